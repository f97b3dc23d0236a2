package validation

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid email", email: "parent@example.com", wantErr: false},
		{name: "valid with plus", email: "parent+lobohub@example.com", wantErr: false},
		{name: "surrounding whitespace", email: " parent@example.com ", wantErr: false},
		{name: "empty", email: "", wantErr: true},
		{name: "missing domain", email: "parent@", wantErr: true},
		{name: "missing at sign", email: "parent.example.com", wantErr: true},
		{name: "missing tld", email: "parent@example", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid password", password: "longenough", wantErr: false},
		{name: "exactly 8 characters", password: "12345678", wantErr: false},
		{name: "too short", password: "short", wantErr: true},
		{name: "empty", password: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid name", input: "Smiths", wantErr: false},
		{name: "two characters", input: "Jo", wantErr: false},
		{name: "single character", input: "J", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollection(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		wantErr bool
	}{
		{name: "known collection", tag: "tasks", wantErr: false},
		{name: "underscored", tag: "meal_plans", wantErr: false},
		{name: "uppercase", tag: "Tasks", wantErr: true},
		{name: "leading digit", tag: "1tasks", wantErr: true},
		{name: "empty", tag: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCollection(tt.tag)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCollection(%q) error = %v, wantErr %v", tt.tag, err, tt.wantErr)
			}
		})
	}
}
