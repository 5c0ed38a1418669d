package handler

// --- Request types ---

type createDealerRequest struct {
	Name           string `json:"name"           validate:"required,notblank"`
	Email          string `json:"email"          validate:"required,email"`
	Phone          string `json:"phone"          validate:"required,notblank"`
	Address        string `json:"address"        validate:"required,notblank"`
	OperatingHours string `json:"operatingHours" validate:"required,notblank"`
	Status         string `json:"status"         validate:"omitempty,oneof=ACTIVE INACTIVE"`
	Region         string `json:"region"         validate:"required,notblank"`
}

// updateDealerRequest uses pointers so absent fields stay untouched.
type updateDealerRequest struct {
	Name           *string `json:"name"           validate:"omitempty,notblank"`
	Email          *string `json:"email"          validate:"omitempty,email"`
	Phone          *string `json:"phone"          validate:"omitempty,notblank"`
	Address        *string `json:"address"        validate:"omitempty,notblank"`
	OperatingHours *string `json:"operatingHours" validate:"omitempty,notblank"`
	Status         *string `json:"status"         validate:"omitempty,oneof=ACTIVE INACTIVE"`
	Region         *string `json:"region"         validate:"omitempty,notblank"`
}

// listDealersQuery leaves page and limit unchecked; out-of-range values fall
// back to defaults in the service.
type listDealersQuery struct {
	Search    string `query:"search"`
	Status    string `query:"status"    validate:"omitempty,oneof=ACTIVE INACTIVE"`
	Region    string `query:"region"`
	SortBy    string `query:"sortBy"`
	SortOrder string `query:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
}
