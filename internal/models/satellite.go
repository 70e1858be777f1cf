package models

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Satellite is the variant-specific row of a polymorphic entity. It shares
// its primary key with the base row.
type Satellite interface {
	Table() string
	Values() map[string]any
}

// SiteFields is the closed set of site satellites.
type SiteFields interface {
	Satellite
	SiteType() SiteType
	siteFields()
}

// NewSiteFields is the only place a site type is mapped to its satellite.
func NewSiteFields(t SiteType) (SiteFields, error) {
	switch t {
	case SiteTypePowerPlant:
		return &PowerPlantFields{}, nil
	case SiteTypeRoad:
		return &RoadFields{}, nil
	case SiteTypeHousing:
		return &HousingFields{}, nil
	case SiteTypeBridge:
		return &BridgeFields{}, nil
	case SiteTypePark:
		return &ParkFields{}, nil
	}
	return nil, fmt.Errorf("unknown site type %q", t)
}

type PowerPlantFields struct {
	EnergyOutput    float64 `db:"energy_output" form:"energy_output" validate:"gte=0"`
	EnergySource    string  `db:"energy_source" form:"energy_source" validate:"required,max=200"`
	IsGridConnected bool    `db:"is_grid_connected" form:"is_grid_connected"`
}

func (*PowerPlantFields) Table() string      { return "power_plant" }
func (*PowerPlantFields) SiteType() SiteType { return SiteTypePowerPlant }
func (*PowerPlantFields) siteFields()        {}
func (f *PowerPlantFields) Values() map[string]any {
	return map[string]any{
		"energy_output":     f.EnergyOutput,
		"energy_source":     f.EnergySource,
		"is_grid_connected": f.IsGridConnected,
	}
}

type RoadFields struct {
	Length  float64 `db:"length" form:"length" validate:"gt=0"`
	Lanes   int     `db:"lanes" form:"lanes" validate:"gte=1"`
	Surface string  `db:"surface" form:"surface" validate:"required,max=200"`
}

func (*RoadFields) Table() string      { return "road" }
func (*RoadFields) SiteType() SiteType { return SiteTypeRoad }
func (*RoadFields) siteFields()        {}
func (f *RoadFields) Values() map[string]any {
	return map[string]any{
		"length":  f.Length,
		"lanes":   f.Lanes,
		"surface": f.Surface,
	}
}

type HousingFields struct {
	NumberOfFloors    int    `db:"number_of_floors" form:"number_of_floors" validate:"gte=1"`
	NumberOfEntrances int    `db:"number_of_entrances" form:"number_of_entrances" validate:"gte=1"`
	HousingType       string `db:"housing_type" form:"housing_type" validate:"required,max=200"`
	EnergyEfficiency  string `db:"energy_efficiency" form:"energy_efficiency" validate:"required,max=20"`
}

func (*HousingFields) Table() string      { return "housing" }
func (*HousingFields) SiteType() SiteType { return SiteTypeHousing }
func (*HousingFields) siteFields()        {}
func (f *HousingFields) Values() map[string]any {
	return map[string]any{
		"number_of_floors":    f.NumberOfFloors,
		"number_of_entrances": f.NumberOfEntrances,
		"housing_type":        f.HousingType,
		"energy_efficiency":   f.EnergyEfficiency,
	}
}

type BridgeFields struct {
	Length       float64 `db:"length" form:"length" validate:"gt=0"`
	RoadMaterial string  `db:"road_material" form:"road_material" validate:"required,max=200"`
	MaxLoad      float64 `db:"max_load" form:"max_load" validate:"gt=0"`
}

func (*BridgeFields) Table() string      { return "bridge" }
func (*BridgeFields) SiteType() SiteType { return SiteTypeBridge }
func (*BridgeFields) siteFields()        {}
func (f *BridgeFields) Values() map[string]any {
	return map[string]any{
		"length":        f.Length,
		"road_material": f.RoadMaterial,
		"max_load":      f.MaxLoad,
	}
}

type ParkFields struct {
	Area          float64 `db:"area" form:"area" validate:"gt=0"`
	HasPlayground bool    `db:"has_playground" form:"has_playground"`
	HasLighting   bool    `db:"has_lighting" form:"has_lighting"`
}

func (*ParkFields) Table() string      { return "park" }
func (*ParkFields) SiteType() SiteType { return SiteTypePark }
func (*ParkFields) siteFields()        {}
func (f *ParkFields) Values() map[string]any {
	return map[string]any{
		"area":           f.Area,
		"has_playground": f.HasPlayground,
		"has_lighting":   f.HasLighting,
	}
}

// QualificationFields is the closed set of technical personnel satellites.
type QualificationFields interface {
	Satellite
	Qualification() Qualification
	qualificationFields()
}

// NewQualificationFields maps a qualification to its satellite.
func NewQualificationFields(q Qualification) (QualificationFields, error) {
	switch q {
	case QualificationTechnician:
		return &TechnicianFields{}, nil
	case QualificationTechnologist:
		return &TechnologistFields{}, nil
	case QualificationEngineer:
		return &EngineerFields{}, nil
	}
	return nil, fmt.Errorf("unknown qualification %q", q)
}

type TechnicianFields struct {
	SafetyTrainingLevel string `db:"safety_training_level" form:"safety_training_level" validate:"required,max=100"`
}

func (*TechnicianFields) Table() string                { return "technician" }
func (*TechnicianFields) Qualification() Qualification { return QualificationTechnician }
func (*TechnicianFields) qualificationFields()         {}
func (f *TechnicianFields) Values() map[string]any {
	return map[string]any{"safety_training_level": f.SafetyTrainingLevel}
}

type TechnologistFields struct {
	ManagementTools pq.StringArray `db:"management_tools" form:"management_tools"`
}

func (*TechnologistFields) Table() string                { return "technologist" }
func (*TechnologistFields) Qualification() Qualification { return QualificationTechnologist }
func (*TechnologistFields) qualificationFields()         {}
func (f *TechnologistFields) Values() map[string]any {
	tools := pq.StringArray(SplitList(f.ManagementTools))
	return map[string]any{"management_tools": tools}
}

type EngineerFields struct {
	PELicenseID int `db:"pe_license_id" form:"pe_license_id" validate:"gt=0"`
}

func (*EngineerFields) Table() string                { return "engineer" }
func (*EngineerFields) Qualification() Qualification { return QualificationEngineer }
func (*EngineerFields) qualificationFields()         {}
func (f *EngineerFields) Values() map[string]any {
	return map[string]any{"pe_license_id": f.PELicenseID}
}

// ProfessionFields is the closed set of worker satellites.
type ProfessionFields interface {
	Satellite
	Profession() Profession
	professionFields()
}

// NewProfessionFields maps a profession to its satellite.
func NewProfessionFields(p Profession) (ProfessionFields, error) {
	switch p {
	case ProfessionElectrician:
		return &ElectricianFields{}, nil
	case ProfessionPlumber:
		return &PlumberFields{}, nil
	case ProfessionWelder:
		return &WelderFields{}, nil
	case ProfessionDriver:
		return &DriverFields{}, nil
	case ProfessionMason:
		return &MasonFields{}, nil
	}
	return nil, fmt.Errorf("unknown profession %q", p)
}

type ElectricianFields struct {
	VoltageSpecialization string `db:"voltage_specialization" form:"voltage_specialization" validate:"required,max=100"`
}

func (*ElectricianFields) Table() string          { return "electrician" }
func (*ElectricianFields) Profession() Profession { return ProfessionElectrician }
func (*ElectricianFields) professionFields()      {}
func (f *ElectricianFields) Values() map[string]any {
	return map[string]any{"voltage_specialization": f.VoltageSpecialization}
}

type PlumberFields struct {
	PipeSpecialization string `db:"pipe_specialization" form:"pipe_specialization" validate:"required,max=100"`
}

func (*PlumberFields) Table() string          { return "plumber" }
func (*PlumberFields) Profession() Profession { return ProfessionPlumber }
func (*PlumberFields) professionFields()      {}
func (f *PlumberFields) Values() map[string]any {
	return map[string]any{"pipe_specialization": f.PipeSpecialization}
}

type WelderFields struct {
	WeldingMachine string `db:"welding_machine" form:"welding_machine" validate:"required,max=100"`
}

func (*WelderFields) Table() string          { return "welder" }
func (*WelderFields) Profession() Profession { return ProfessionWelder }
func (*WelderFields) professionFields()      {}
func (f *WelderFields) Values() map[string]any {
	return map[string]any{"welding_machine": f.WeldingMachine}
}

type DriverFields struct {
	VehicleType       string `db:"vehicle_type" form:"vehicle_type" validate:"required,max=100"`
	NumberOfAccidents int    `db:"number_of_accidents" form:"number_of_accidents" validate:"gte=0"`
}

func (*DriverFields) Table() string          { return "driver" }
func (*DriverFields) Profession() Profession { return ProfessionDriver }
func (*DriverFields) professionFields()      {}
func (f *DriverFields) Values() map[string]any {
	return map[string]any{
		"vehicle_type":        f.VehicleType,
		"number_of_accidents": f.NumberOfAccidents,
	}
}

type MasonFields struct {
	HQRestorationSkills bool `db:"hq_restoration_skills" form:"hq_restoration_skills"`
}

func (*MasonFields) Table() string          { return "mason" }
func (*MasonFields) Profession() Profession { return ProfessionMason }
func (*MasonFields) professionFields()      {}
func (f *MasonFields) Values() map[string]any {
	return map[string]any{"hq_restoration_skills": f.HQRestorationSkills}
}

// SplitList flattens repeated and comma-separated form values, dropping blanks.
func SplitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
