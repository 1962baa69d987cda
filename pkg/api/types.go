package api

// Product is a single catalog entry.
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Subcategory   string   `json:"subcategory"`
	Images        []string `json:"images"`
	Created       string   `json:"created"` // YYYY-MM-DD
	Description   string   `json:"description"`
	Specification string   `json:"specification"`
	Features      string   `json:"features"`
}

// CreatedLayout is the date layout of Product.Created.
const CreatedLayout = "2006-01-02"

// CredentialsRequest is the body of the signup and login endpoints.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateCredentialsRequest is the body of the credential update endpoint.
type UpdateCredentialsRequest struct {
	CurrentUsername string `json:"currentUsername"`
	CurrentPassword string `json:"currentPassword"`
	NewUsername     string `json:"newUsername"`
	NewPassword     string `json:"newPassword"`
}

// AuthReply is the generic reply of the admin endpoints.
type AuthReply struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Username string `json:"username,omitempty"`
}

// LoginReply is returned by a successful login.
type LoginReply struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"` // seconds
}

// EnquiryRequest is the body of the mail enquiry endpoints.
type EnquiryRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Company         string `json:"company"`
	ProductInterest string `json:"productInterest"`
	Industry        string `json:"industry"`
	Message         string `json:"message"`
	ProductID       string `json:"productId"`
}
