package models

type Role string

const (
	Institution Role = "institution"
	Authority   Role = "authority"
)

// Registration — профиль учреждения, отправляется вместе с OTP одним запросом.
type Registration struct {
	InstitutionName string `json:"institution_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	AicteID         string `json:"aicte_id"`
	InstType        string `json:"inst_type"`
	Category        string `json:"category"`
	YearEstablished int    `json:"year_established"`
	AffiliatedUniv  string `json:"affiliated_univ"`
	State           string `json:"state"`
	District        string `json:"district"`
	Pincode         string `json:"pincode" validate:"omitempty,numeric,len=6"`
	PrincipalName   string `json:"principal_name"`
	Mobile          string `json:"mobile" validate:"omitempty,numeric,min=10,max=13"`
}

// InstitutionLogin — ответ /login/ и /verify-otp/.
type InstitutionLogin struct {
	InstitutionID   int64  `json:"institution_id"`
	InstitutionName string `json:"institution_name"`
}

type AuthorityLogin struct {
	Name string `json:"name"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
