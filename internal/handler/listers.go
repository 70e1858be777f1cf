package handler

import (
	"context"

	"github.com/meliosu/onyx-core-builders/internal/models"
)

// Nested tabs list rows of another resource through these.

type areaLister interface {
	List(ctx context.Context, filter models.AreaFilter, params models.ListParams) (models.ListResult[models.AreaListItem], error)
}

type siteLister interface {
	List(ctx context.Context, filter models.SiteFilter, params models.ListParams) (models.ListResult[models.SiteListItem], error)
}

type personnelLister interface {
	List(ctx context.Context, filter models.TechnicalPersonnelFilter, params models.ListParams) (models.ListResult[models.TechnicalPersonnelListItem], error)
}

type allocationLister interface {
	Allocations(ctx context.Context, filter models.AllocationFilter, params models.ListParams) (models.ListResult[models.Allocation], error)
}

type taskLister interface {
	List(ctx context.Context, filter models.TaskFilter, params models.ListParams) (models.ListResult[models.TaskListItem], error)
}

type brigadeLister interface {
	List(ctx context.Context, filter models.BrigadeFilter, params models.ListParams) (models.ListResult[models.BrigadeListItem], error)
}

type workerLister interface {
	List(ctx context.Context, filter models.WorkerFilter, params models.ListParams) (models.ListResult[models.WorkerListItem], error)
}
