package user

import "github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/validator"

type RegisterRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Photo       string `json:"photo"`
	Role        Role   `json:"role"`
	CompanyName string `json:"companyName"`
	CompanyLogo string `json:"companyLogo"`
}

func (r *RegisterRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = validator.NormalizeEmail(r.Email)
	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}

	if r.Role == "" {
		r.Role = RoleEmployee
	}
	if !validator.IsInSlice(string(r.Role), []string{string(RoleHR), string(RoleEmployee)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: hr, employee",
		})
	}

	if r.Role == RoleHR && validator.IsEmpty(r.CompanyName) {
		errs = append(errs, validator.ValidationError{
			Field:   "companyName",
			Message: ErrCompanyNameRequired.Error(),
		})
	}

	if r.Photo != "" && !validator.IsValidURL(r.Photo) {
		errs = append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "photo must be a valid URL",
		})
	}
	if r.CompanyLogo != "" && !validator.IsValidURL(r.CompanyLogo) {
		errs = append(errs, validator.ValidationError{
			Field:   "companyLogo",
			Message: "companyLogo must be a valid URL",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RegisterResponse struct {
	User    User `json:"user"`
	Created bool `json:"created"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Photo *string `json:"photo,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name == nil && r.Photo == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "at least one of name or photo must be provided",
		})
	}

	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not be empty",
			})
		}
		if len(*r.Name) > 255 {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not exceed 255 characters",
			})
		}
	}

	if r.Photo != nil && *r.Photo != "" && !validator.IsValidURL(*r.Photo) {
		errs = append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "photo must be a valid URL",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AddTeamMembersRequest struct {
	EmployeeIDs []string `json:"employeeIds"`
	CompanyName *string  `json:"companyName,omitempty"`
	CompanyLogo *string  `json:"companyLogo,omitempty"`
}

func (r *AddTeamMembersRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.EmployeeIDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "employeeIds",
			Message: "employeeIds must contain at least one id",
		})
	}
	for _, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "employeeIds",
				Message: "employeeIds must not contain empty ids",
			})
			break
		}
	}

	if r.CompanyLogo != nil && *r.CompanyLogo != "" && !validator.IsValidURL(*r.CompanyLogo) {
		errs = append(errs, validator.ValidationError{
			Field:   "companyLogo",
			Message: "companyLogo must be a valid URL",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AddTeamMembersResponse struct {
	Requested int   `json:"requested"`
	Added     int64 `json:"added"`
}

type TeamCountResponse struct {
	Count int64 `json:"count"`
}

type TeamResponse struct {
	HREmail     string `json:"hrEmail,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	CompanyLogo string `json:"companyLogo,omitempty"`
	Members     []User `json:"members"`
}

type RoleResponse struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
