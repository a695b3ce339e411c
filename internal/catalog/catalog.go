package catalog

import "fmt"

// Field describes a single tracked data point within a stage.
type Field struct {
	Name     string
	Required bool
}

// Stage describes one step of the fixed onboarding sequence.
type Stage struct {
	Number           int
	Key              string
	Name             string
	Weight           int
	Required         bool
	EstimatedMinutes int
	Fields           []Field
}

// TotalScoreWeight is the sum all stage weights must reach.
const TotalScoreWeight = 100

var stages = []Stage{
	{
		Number:           1,
		Key:              "villa_information",
		Name:             "Villa Information",
		Weight:           15,
		Required:         true,
		EstimatedMinutes: 20,
		Fields: []Field{
			{Name: "villaName", Required: true},
			{Name: "villaAddress", Required: true},
			{Name: "city", Required: true},
			{Name: "country", Required: true},
			{Name: "propertyType", Required: true},
			{Name: "bedrooms", Required: true},
			{Name: "bathrooms", Required: true},
			{Name: "maxGuests"},
			{Name: "landSize"},
			{Name: "villaArea"},
		},
	},
	{
		Number:           2,
		Key:              "owner_details",
		Name:             "Owner Details",
		Weight:           12,
		Required:         true,
		EstimatedMinutes: 10,
		Fields: []Field{
			{Name: "firstName", Required: true},
			{Name: "lastName", Required: true},
			{Name: "email", Required: true},
			{Name: "phone", Required: true},
			{Name: "nationality"},
			{Name: "address"},
			{Name: "companyName"},
		},
	},
	{
		Number:           3,
		Key:              "contractual_details",
		Name:             "Contractual Details",
		Weight:           10,
		Required:         true,
		EstimatedMinutes: 15,
		Fields: []Field{
			{Name: "contractStartDate", Required: true},
			{Name: "contractType", Required: true},
			{Name: "commissionRate", Required: true},
			{Name: "paymentTerms"},
			{Name: "cancellationPolicy"},
		},
	},
	{
		Number:           4,
		Key:              "bank_details",
		Name:             "Bank Details",
		Weight:           8,
		Required:         true,
		EstimatedMinutes: 10,
		Fields: []Field{
			{Name: "accountHolderName", Required: true},
			{Name: "bankName", Required: true},
			{Name: "accountNumber", Required: true},
			{Name: "swiftCode", Required: true},
			{Name: "currency"},
			{Name: "bankBranch"},
		},
	},
	{
		Number:           5,
		Key:              "ota_credentials",
		Name:             "OTA Credentials",
		Weight:           5,
		EstimatedMinutes: 5,
		Fields: []Field{
			{Name: "airbnbListed"},
			{Name: "bookingComListed"},
			{Name: "vrboListed"},
			{Name: "platformUsername"},
			{Name: "platformAccountURL"},
		},
	},
	{
		Number:           6,
		Key:              "documents",
		Name:             "Documents",
		Weight:           10,
		Required:         true,
		EstimatedMinutes: 15,
		Fields: []Field{
			{Name: "propertyTitle", Required: true},
			{Name: "propertyContract", Required: true},
			{Name: "insuranceCertificate"},
			{Name: "utilityBills"},
			{Name: "licenses"},
		},
	},
	{
		Number:           7,
		Key:              "staff_configuration",
		Name:             "Staff Configuration",
		Weight:           10,
		EstimatedMinutes: 10,
		Fields: []Field{
			{Name: "villaManager"},
			{Name: "housekeeper"},
			{Name: "gardener"},
			{Name: "poolMaintenance"},
			{Name: "securityStaff"},
		},
	},
	{
		Number:           8,
		Key:              "facilities",
		Name:             "Facilities",
		Weight:           10,
		Required:         true,
		EstimatedMinutes: 10,
		Fields: []Field{
			{Name: "kitchenEquipment", Required: true},
			{Name: "safetyEquipment", Required: true},
			{Name: "poolDetails"},
			{Name: "entertainmentSystems"},
			{Name: "outdoorFacilities"},
		},
	},
	{
		Number:           9,
		Key:              "photos",
		Name:             "Photos & Media",
		Weight:           10,
		Required:         true,
		EstimatedMinutes: 25,
		Fields: []Field{
			{Name: "coverPhoto", Required: true},
			{Name: "bedroomPhotos", Required: true},
			{Name: "bathroomPhotos"},
			{Name: "exteriorPhotos"},
			{Name: "videoTour"},
		},
	},
	{
		Number:           10,
		Key:              "review_submit",
		Name:             "Review & Submit",
		Weight:           10,
		Required:         true,
		EstimatedMinutes: 5,
		Fields: []Field{
			{Name: "agreementAccepted", Required: true},
			{Name: "reviewNotes"},
		},
	},
}

// Stages returns the ordered stage table.
func Stages() []Stage {
	cp := make([]Stage, len(stages))
	copy(cp, stages)
	return cp
}

// StageCount returns the number of declared stages.
func StageCount() int {
	return len(stages)
}

// StageByNumber looks up a stage by its 1-based number.
func StageByNumber(number int) (Stage, bool) {
	if number < 1 || number > len(stages) {
		return Stage{}, false
	}
	return stages[number-1], true
}

// FieldNames returns the ordered field names declared for the stage.
func (s Stage) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		names = append(names, field.Name)
	}
	return names
}

// FieldByName looks up a declared field on the stage.
func (s Stage) FieldByName(name string) (Field, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// RequiredFieldNames returns the names of the stage's required fields.
func (s Stage) RequiredFieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		if field.Required {
			names = append(names, field.Name)
		}
	}
	return names
}

// TotalFields returns the number of fields declared across all stages.
func TotalFields() int {
	total := 0
	for _, stage := range stages {
		total += len(stage.Fields)
	}
	return total
}

// TotalEstimatedMinutes returns the summed time estimate for a full onboarding.
func TotalEstimatedMinutes() int {
	total := 0
	for _, stage := range stages {
		total += stage.EstimatedMinutes
	}
	return total
}

// Validate checks the structural invariants of the stage table: contiguous
// 1-based numbering, weights summing to TotalScoreWeight, and unique,
// non-empty field names within each stage.
func Validate() error {
	weight := 0
	for i, stage := range stages {
		if stage.Number != i+1 {
			return fmt.Errorf("stage %q: number %d, expected %d", stage.Key, stage.Number, i+1)
		}
		if stage.Key == "" || stage.Name == "" {
			return fmt.Errorf("stage %d: key and name must be set", stage.Number)
		}
		if stage.Weight <= 0 {
			return fmt.Errorf("stage %q: weight must be positive", stage.Key)
		}
		if len(stage.Fields) == 0 {
			return fmt.Errorf("stage %q: declares no fields", stage.Key)
		}
		seen := make(map[string]struct{}, len(stage.Fields))
		for _, field := range stage.Fields {
			if field.Name == "" {
				return fmt.Errorf("stage %q: empty field name", stage.Key)
			}
			if _, dup := seen[field.Name]; dup {
				return fmt.Errorf("stage %q: duplicate field %q", stage.Key, field.Name)
			}
			seen[field.Name] = struct{}{}
		}
		weight += stage.Weight
	}
	if weight != TotalScoreWeight {
		return fmt.Errorf("stage weights sum to %d, expected %d", weight, TotalScoreWeight)
	}
	return nil
}
