package domain

import "time"

// Address is the address sub-object of a target place.
type Address struct {
	CountryID   int64  `json:"country_id,omitempty"`
	StateID     int64  `json:"state_id,omitempty"`
	City        string `json:"city,omitempty"`
	Street      string `json:"street,omitempty"`
	HouseNumber string `json:"house_number,omitempty"`
}

// Target is the place record a chosen candidate is merged into.
type Target struct {
	ID       string     `json:"id"`
	Name     string     `json:"name,omitempty"`
	Address  Address    `json:"address"`
	Location Coordinate `json:"location"`
}

// Field names one of the four mergeable target fields.
type Field string

const (
	FieldName        Field = "name"
	FieldHouseNumber Field = "houseNumber"
	FieldStreet      Field = "street"
	FieldCity        Field = "city"
)

// Decision is the outcome of merging one field.
type Decision string

const (
	// DecisionNoop: the candidate field is absent or equal to the current value.
	DecisionNoop Decision = "noop"
	// DecisionApply: the current value was empty, applied without asking.
	DecisionApply Decision = "apply"
	// DecisionConfirmed: the values conflicted and the user agreed to replace.
	DecisionConfirmed Decision = "confirmed"
	// DecisionDeclined: the values conflicted and the user kept the current value.
	DecisionDeclined Decision = "declined"
)

// Applied reports whether the decision changes the target.
func (d Decision) Applied() bool {
	return d == DecisionApply || d == DecisionConfirmed
}

// FieldUpdate records the merge decision for one field.
type FieldUpdate struct {
	Field    Field    `json:"field"`
	Old      string   `json:"old,omitempty"`
	New      string   `json:"new,omitempty"`
	Decision Decision `json:"decision"`
}

// MutationKind selects which part of the target a mutation patches.
type MutationKind string

const (
	MutationAttributes MutationKind = "attributes"
	MutationAddress    MutationKind = "address"
)

// AddressPatch is the payload of an address mutation. Street and house number
// travel together because the host addresses them jointly.
type AddressPatch struct {
	CountryID   int64  `json:"country_id,omitempty"`
	StateID     int64  `json:"state_id,omitempty"`
	City        string `json:"city,omitempty"`
	Street      string `json:"street,omitempty"`
	HouseNumber string `json:"house_number,omitempty"`
}

// Mutation is one field-update request queued against the host's edit system.
type Mutation struct {
	TargetID   string            `json:"target_id"`
	Kind       MutationKind      `json:"kind"`
	Fields     []Field           `json:"fields"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Address    *AddressPatch     `json:"address,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
