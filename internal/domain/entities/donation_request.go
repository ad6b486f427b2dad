package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Column limits shared by request, profile and ledger fields.
const (
	MaxNameLength     = 100
	MaxPlaceLength    = 100
	MaxHospitalLength = 255
	MaxScheduleLength = 20
)

// RequestStatus is the lifecycle state of a donation request
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusInProgress RequestStatus = "inprogress"
	RequestStatusDone       RequestStatus = "done"
	RequestStatusCanceled   RequestStatus = "canceled"
)

// Valid reports whether s is a lifecycle state.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusInProgress, RequestStatusDone, RequestStatusCanceled:
		return true
	}
	return false
}

// Terminal states have no outgoing transitions.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusDone || s == RequestStatusCanceled
}

// AllowedSources returns the states a request may be in to move to target
// through a status update. Claims (pending -> inprogress) use their own path.
func AllowedSources(target RequestStatus) []RequestStatus {
	switch target {
	case RequestStatusCanceled:
		return []RequestStatus{RequestStatusPending, RequestStatusInProgress}
	case RequestStatusDone:
		return []RequestStatus{RequestStatusInProgress}
	}
	return nil
}

// DonationRequest is a call for blood posted by a requester on behalf of a recipient
type DonationRequest struct {
	ID                uuid.UUID     `json:"id"`
	RequesterName     string        `json:"requesterName"`
	RequesterEmail    string        `json:"requesterEmail"`
	RecipientName     string        `json:"recipientName"`
	RecipientDistrict string        `json:"recipientDistrict"`
	RecipientUpazila  string        `json:"recipientUpazila"`
	FullAddress       string        `json:"fullAddress"`
	HospitalName      string        `json:"hospitalName"`
	BloodGroup        string        `json:"bloodGroup"`
	DonationDate      string        `json:"donationDate"`
	DonationTime      string        `json:"donationTime"`
	RequestMessage    string        `json:"requestMessage"`
	DonorName         null.String   `json:"donorName"`
	DonorEmail        null.String   `json:"donorEmail"`
	Status            RequestStatus `json:"status"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// CreateDonationRequestInput is the create payload. Requester identity is never read from it.
type CreateDonationRequestInput struct {
	RequesterName     string `json:"requesterName" binding:"max=100"`
	RecipientName     string `json:"recipientName" binding:"required,max=100"`
	RecipientDistrict string `json:"recipientDistrict" binding:"required,max=100"`
	RecipientUpazila  string `json:"recipientUpazila" binding:"required,max=100"`
	FullAddress       string `json:"fullAddress"`
	HospitalName      string `json:"hospitalName" binding:"required,max=255"`
	BloodGroup        string `json:"bloodGroup" binding:"required"`
	DonationDate      string `json:"donationDate" binding:"required,max=20"`
	DonationTime      string `json:"donationTime" binding:"required,max=20"`
	RequestMessage    string `json:"requestMessage"`
}

// UpdateDonationRequestInput is a partial update of the descriptive fields.
type UpdateDonationRequestInput struct {
	RecipientName     *string `json:"recipientName" binding:"omitempty,max=100"`
	RecipientDistrict *string `json:"recipientDistrict" binding:"omitempty,max=100"`
	RecipientUpazila  *string `json:"recipientUpazila" binding:"omitempty,max=100"`
	FullAddress       *string `json:"fullAddress"`
	HospitalName      *string `json:"hospitalName" binding:"omitempty,max=255"`
	BloodGroup        *string `json:"bloodGroup"`
	DonationDate      *string `json:"donationDate" binding:"omitempty,max=20"`
	DonationTime      *string `json:"donationTime" binding:"omitempty,max=20"`
	RequestMessage    *string `json:"requestMessage"`
}

// Empty reports whether the update carries no fields.
func (in UpdateDonationRequestInput) Empty() bool {
	return in.RecipientName == nil && in.RecipientDistrict == nil && in.RecipientUpazila == nil &&
		in.FullAddress == nil && in.HospitalName == nil && in.BloodGroup == nil &&
		in.DonationDate == nil && in.DonationTime == nil && in.RequestMessage == nil
}

// Fields returns the non-nil fields keyed by their JSON name.
func (in UpdateDonationRequestInput) Fields() map[string]string {
	out := map[string]string{}
	set := func(k string, v *string) {
		if v != nil {
			out[k] = *v
		}
	}
	set("recipientName", in.RecipientName)
	set("recipientDistrict", in.RecipientDistrict)
	set("recipientUpazila", in.RecipientUpazila)
	set("fullAddress", in.FullAddress)
	set("hospitalName", in.HospitalName)
	set("bloodGroup", in.BloodGroup)
	set("donationDate", in.DonationDate)
	set("donationTime", in.DonationTime)
	set("requestMessage", in.RequestMessage)
	return out
}

// UpdateRequestStatusInput is the payload of the status endpoint
type UpdateRequestStatusInput struct {
	Status RequestStatus `json:"status" binding:"required"`
}

// ClaimRequestInput carries the optional donor display name; email comes from the token.
type ClaimRequestInput struct {
	DonorName string `json:"donorName" binding:"max=100"`
}

// DonationRequestFilter narrows listings. Empty fields are ignored.
type DonationRequestFilter struct {
	RequesterEmail string
	Status         RequestStatus
	BloodGroup     string
	District       string
	Upazila        string
}

// StatusUpdate is a conditional transition: it applies only when the stored
// status is one of From and, if OwnerEmail is set, the requester matches.
type StatusUpdate struct {
	ID         uuid.UUID
	To         RequestStatus
	From       []RequestStatus
	OwnerEmail string
}

// ClaimUpdate assigns a donor to a pending request.
type ClaimUpdate struct {
	ID         uuid.UUID
	DonorName  string
	DonorEmail string
}
