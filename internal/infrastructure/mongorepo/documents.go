package mongorepo

import (
	"time"

	"blood-donate.backend/internal/domain/entities"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

const (
	usersCollection    = "user"
	requestsCollection = "request"
	fundingCollection  = "payments"
)

type userDocument struct {
	ID         string    `bson:"_id"`
	Email      string    `bson:"email"`
	Name       string    `bson:"name"`
	PhotoURL   string    `bson:"photoUrl"`
	BloodGroup string    `bson:"bloodGroup,omitempty"`
	District   string    `bson:"district,omitempty"`
	Upazila    string    `bson:"upazila,omitempty"`
	Role       string    `bson:"role"`
	Status     string    `bson:"status"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

type requestDocument struct {
	ID                string    `bson:"_id"`
	RequesterName     string    `bson:"requesterName"`
	RequesterEmail    string    `bson:"requesterEmail"`
	RecipientName     string    `bson:"recipientName"`
	RecipientDistrict string    `bson:"recipientDistrict"`
	RecipientUpazila  string    `bson:"recipientUpazila"`
	FullAddress       string    `bson:"fullAddress,omitempty"`
	HospitalName      string    `bson:"hospitalName"`
	BloodGroup        string    `bson:"bloodGroup"`
	DonationDate      string    `bson:"donationDate"`
	DonationTime      string    `bson:"donationTime"`
	RequestMessage    string    `bson:"requestMessage,omitempty"`
	DonorName         *string   `bson:"donorName"`
	DonorEmail        *string   `bson:"donorEmail"`
	Status            string    `bson:"status"`
	CreatedAt         time.Time `bson:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt"`
}

type fundingDocument struct {
	ID            string    `bson:"_id"`
	DonorName     string    `bson:"donorName"`
	DonorEmail    string    `bson:"donorEmail"`
	Amount        float64   `bson:"amount"`
	Currency      string    `bson:"currency"`
	PaymentStatus string    `bson:"paymentStatus"`
	TransactionID string    `bson:"transactionId"`
	SessionID     string    `bson:"sessionId"`
	PaidAt        time.Time `bson:"paidAt"`
	CreatedAt     time.Time `bson:"createdAt"`
}

func parseID(raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func (d *userDocument) toEntity() *entities.User {
	return &entities.User{
		ID:         parseID(d.ID),
		Email:      d.Email,
		Name:       d.Name,
		PhotoURL:   d.PhotoURL,
		BloodGroup: d.BloodGroup,
		District:   d.District,
		Upazila:    d.Upazila,
		Role:       entities.UserRole(d.Role),
		Status:     entities.UserStatus(d.Status),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func newUserDocument(u *entities.User) *userDocument {
	role, status := u.Role, u.Status
	if role == "" {
		role = entities.UserRoleDonor
	}
	if status == "" {
		status = entities.UserStatusActive
	}
	return &userDocument{
		ID:         u.ID.String(),
		Email:      u.Email,
		Name:       u.Name,
		PhotoURL:   u.PhotoURL,
		BloodGroup: u.BloodGroup,
		District:   u.District,
		Upazila:    u.Upazila,
		Role:       string(role),
		Status:     string(status),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func (d *requestDocument) toEntity() *entities.DonationRequest {
	return &entities.DonationRequest{
		ID:                parseID(d.ID),
		RequesterName:     d.RequesterName,
		RequesterEmail:    d.RequesterEmail,
		RecipientName:     d.RecipientName,
		RecipientDistrict: d.RecipientDistrict,
		RecipientUpazila:  d.RecipientUpazila,
		FullAddress:       d.FullAddress,
		HospitalName:      d.HospitalName,
		BloodGroup:        d.BloodGroup,
		DonationDate:      d.DonationDate,
		DonationTime:      d.DonationTime,
		RequestMessage:    d.RequestMessage,
		DonorName:         null.StringFromPtr(d.DonorName),
		DonorEmail:        null.StringFromPtr(d.DonorEmail),
		Status:            entities.RequestStatus(d.Status),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func newRequestDocument(r *entities.DonationRequest) *requestDocument {
	return &requestDocument{
		ID:                r.ID.String(),
		RequesterName:     r.RequesterName,
		RequesterEmail:    r.RequesterEmail,
		RecipientName:     r.RecipientName,
		RecipientDistrict: r.RecipientDistrict,
		RecipientUpazila:  r.RecipientUpazila,
		FullAddress:       r.FullAddress,
		HospitalName:      r.HospitalName,
		BloodGroup:        r.BloodGroup,
		DonationDate:      r.DonationDate,
		DonationTime:      r.DonationTime,
		RequestMessage:    r.RequestMessage,
		DonorName:         r.DonorName.Ptr(),
		DonorEmail:        r.DonorEmail.Ptr(),
		Status:            string(r.Status),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func (d *fundingDocument) toEntity() *entities.FundingRecord {
	return &entities.FundingRecord{
		ID:            parseID(d.ID),
		DonorName:     d.DonorName,
		DonorEmail:    d.DonorEmail,
		Amount:        d.Amount,
		Currency:      d.Currency,
		PaymentStatus: d.PaymentStatus,
		TransactionID: d.TransactionID,
		SessionID:     d.SessionID,
		PaidAt:        d.PaidAt,
		CreatedAt:     d.CreatedAt,
	}
}
