package dto

import "github.com/noah-isme/doctrack-api/internal/models"

// DateLayout is the calendar date format accepted for received and forward dates.
const DateLayout = "2006-01-02"

// ReceiveDocumentRequest registers a new incoming document.
type ReceiveDocumentRequest struct {
	Kind               models.DocumentKind `json:"kind" validate:"required,oneof=NOTESHEET BILL LETTER"`
	DocumentNumber     string              `json:"documentNumber" validate:"required,max=64"`
	Subject            string              `json:"subject" validate:"required,max=500"`
	SenderName         string              `json:"senderName" validate:"required,max=200"`
	SenderOrganization string              `json:"senderOrganization" validate:"max=200"`
	SenderAddress      string              `json:"senderAddress" validate:"max=500"`
	ReferenceNumber    string              `json:"referenceNumber" validate:"max=100"`
	ReceivedDate       string              `json:"receivedDate" validate:"required,datetime=2006-01-02"`
	Priority           models.Priority     `json:"priority" validate:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	Category           string              `json:"category" validate:"max=100"`
	Remarks            string              `json:"remarks" validate:"max=1000"`

	Bill   *BillDetails   `json:"bill,omitempty" validate:"required_if=Kind BILL"`
	Letter *LetterDetails `json:"letter,omitempty"`
}

// BillDetails carries bill specific attributes.
type BillDetails struct {
	InvoiceNumber    string   `json:"invoiceNumber" validate:"max=100"`
	VendorName       string   `json:"vendorName" validate:"max=200"`
	VendorGSTIN      string   `json:"vendorGstin" validate:"omitempty,len=15"`
	VendorPAN        string   `json:"vendorPan" validate:"omitempty,len=10"`
	BillDate         string   `json:"billDate" validate:"omitempty,datetime=2006-01-02"`
	BillAmount       float64  `json:"billAmount" validate:"gt=0"`
	NetPayableAmount *float64 `json:"netPayableAmount" validate:"omitempty,gte=0"`
}

// LetterDetails carries letter specific attributes.
type LetterDetails struct {
	LetterType    models.LetterType `json:"letterType" validate:"omitempty,oneof=INCOMING OUTGOING INTERNAL"`
	LetterDate    string            `json:"letterDate" validate:"omitempty,datetime=2006-01-02"`
	ReplyRequired bool              `json:"replyRequired"`
	ReplyDeadline string            `json:"replyDeadline" validate:"omitempty,datetime=2006-01-02"`
}

// ForwardRequest moves a document to another user.
type ForwardRequest struct {
	ToUserID    string                `json:"toUserId" validate:"required"`
	ToSectionID string                `json:"toSectionId"`
	Action      models.MovementAction `json:"action" validate:"omitempty,oneof=FORWARDED RETURNED APPROVED REJECTED REVIEWED"`
	Comments    string                `json:"comments" validate:"max=2000"`
	// ForwardDate may be back-dated; empty means now.
	ForwardDate string `json:"forwardDate" validate:"omitempty,datetime=2006-01-02"`
}

// ParkRequest suspends a document.
type ParkRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// CloseRequest closes a document with an optional remark.
type CloseRequest struct {
	Remarks string `json:"remarks" validate:"max=1000"`
}

// MarkRepliedRequest records the reply sent for a letter.
type MarkRepliedRequest struct {
	ReplyReference string `json:"replyReference" validate:"required,max=100"`
	RepliedDate    string `json:"repliedDate" validate:"omitempty,datetime=2006-01-02"`
}

// DocumentQuery mirrors supported listing filters.
type DocumentQuery struct {
	Kind      models.DocumentKind
	Status    []models.DocumentStatus
	HolderID  string
	SectionID string
	Parked    *bool
	Search    string
	Page      int
	PageSize  int
}

// DocumentDetail bundles a document with its movement trail.
type DocumentDetail struct {
	Document  *models.Document  `json:"document"`
	Movements []models.Movement `json:"movements"`
	TimeHeld  *models.TimeHeld  `json:"timeHeld,omitempty"`
}
