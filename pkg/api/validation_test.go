package api

import "testing"

func TestValidateProduct(t *testing.T) {
	tests := []struct {
		name      string
		product   Product
		wantParam string // empty means valid
	}{
		{"valid", Product{Name: "Gear Pump", Created: "2024-03-01"}, ""},
		{"valid without date", Product{Name: "Gear Pump"}, ""},
		{"missing name", Product{Category: "pumps"}, "name"},
		{"blank name", Product{Name: "   "}, "name"},
		{"bad date", Product{Name: "Gear Pump", Created: "01/03/2024"}, "created"},
		{"empty image", Product{Name: "Gear Pump", Images: []string{"a.png", ""}}, "images"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProduct(&tt.product)
			if tt.wantParam == "" {
				if err != nil {
					t.Fatalf("ValidateProduct() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateProduct() = nil, want error on %q", tt.wantParam)
			}
			if err.Param != tt.wantParam {
				t.Errorf("Param = %q, want %q", err.Param, tt.wantParam)
			}
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	if err := ValidateCredentials(&CredentialsRequest{Username: "admin", Password: "secret"}); err != nil {
		t.Errorf("valid credentials rejected: %v", err)
	}
	if err := ValidateCredentials(&CredentialsRequest{Password: "secret"}); err == nil || err.Param != "username" {
		t.Errorf("missing username: got %v", err)
	}
	if err := ValidateCredentials(&CredentialsRequest{Username: "admin"}); err == nil || err.Param != "password" {
		t.Errorf("missing password: got %v", err)
	}
}

func TestValidateUpdateCredentials(t *testing.T) {
	full := UpdateCredentialsRequest{
		CurrentUsername: "admin",
		CurrentPassword: "secret",
		NewUsername:     "root",
		NewPassword:     "hunter2",
	}
	if err := ValidateUpdateCredentials(&full); err != nil {
		t.Fatalf("valid update rejected: %v", err)
	}

	tests := []struct {
		param string
		clear func(*UpdateCredentialsRequest)
	}{
		{"currentUsername", func(r *UpdateCredentialsRequest) { r.CurrentUsername = "" }},
		{"currentPassword", func(r *UpdateCredentialsRequest) { r.CurrentPassword = "" }},
		{"newUsername", func(r *UpdateCredentialsRequest) { r.NewUsername = "" }},
		{"newPassword", func(r *UpdateCredentialsRequest) { r.NewPassword = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			req := full
			tt.clear(&req)
			err := ValidateUpdateCredentials(&req)
			if err == nil || err.Param != tt.param {
				t.Errorf("got %v, want error on %q", err, tt.param)
			}
		})
	}
}
