package staff

type CreateStaffRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Specialization string `json:"specialization"`
}

type AddSlotsRequest struct {
	Dates []string `json:"dates" binding:"required"`
}
