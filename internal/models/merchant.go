package models

import "time"

// MerchantSubmission is the field data handed to a submission handler.
type MerchantSubmission struct {
	// BusinessName is the merchant's trading name.
	BusinessName string `json:"business_name"`

	// Description is free text about the business.
	Description string `json:"description"`

	// Address is the postal address as shown in the form.
	Address string `json:"address"`

	// Location is the JSON encoding of the selected point, e.g. {"lat":-6.2,"lng":106.8}.
	Location string `json:"location"`

	// Images holds the encoded images in upload order.
	Images []string `json:"images"`
}

// RegistrationRecord is what gets published for a submitted merchant.
type RegistrationRecord struct {
	RegistrationID string    `json:"registration_id"`
	SubmittedAt    time.Time `json:"submitted_at"`

	MerchantSubmission
}
