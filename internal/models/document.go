package models

import "time"

// DocumentKind distinguishes the tracked paper types.
type DocumentKind string

const (
	DocumentKindNotesheet DocumentKind = "NOTESHEET"
	DocumentKindBill      DocumentKind = "BILL"
	DocumentKindLetter    DocumentKind = "LETTER"
)

// DocumentStatus is the lifecycle state of a document.
type DocumentStatus string

const (
	StatusReceived   DocumentStatus = "RECEIVED"
	StatusInProgress DocumentStatus = "IN_PROGRESS"
	StatusForwarded  DocumentStatus = "FORWARDED"
	StatusApproved   DocumentStatus = "APPROVED"
	StatusRejected   DocumentStatus = "REJECTED"
	StatusParked     DocumentStatus = "PARKED"
	StatusReplied    DocumentStatus = "REPLIED"
	StatusClosed     DocumentStatus = "CLOSED"
	StatusArchived   DocumentStatus = "ARCHIVED"
)

// Terminal reports whether the status freezes all movement.
func (s DocumentStatus) Terminal() bool {
	return s == StatusClosed || s == StatusArchived
}

// Priority ranks documents for handling.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// PaymentStatus tracks bill settlement.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// LetterType classifies correspondence direction.
type LetterType string

const (
	LetterIncoming LetterType = "INCOMING"
	LetterOutgoing LetterType = "OUTGOING"
	LetterInternal LetterType = "INTERNAL"
)

// Document is a notesheet, bill or letter. Kind specific columns are nil for other kinds.
// CurrentHolderID and CurrentSectionID are maintained only by the movement recorder.
type Document struct {
	ID                  string         `db:"id" json:"id"`
	Kind                DocumentKind   `db:"kind" json:"kind"`
	DocumentNumber      string         `db:"document_number" json:"documentNumber"`
	Subject             string         `db:"subject" json:"subject"`
	SenderName          string         `db:"sender_name" json:"senderName"`
	SenderOrganization  *string        `db:"sender_organization" json:"senderOrganization,omitempty"`
	SenderAddress       *string        `db:"sender_address" json:"senderAddress,omitempty"`
	ReferenceNumber     *string        `db:"reference_number" json:"referenceNumber,omitempty"`
	ReceivedDate        time.Time      `db:"received_date" json:"receivedDate"`
	Priority            Priority       `db:"priority" json:"priority"`
	Category            *string        `db:"category" json:"category,omitempty"`
	Remarks             *string        `db:"remarks" json:"remarks,omitempty"`
	Status              DocumentStatus `db:"current_status" json:"status"`
	CurrentSectionID    *string        `db:"current_section_id" json:"currentSectionId,omitempty"`
	CurrentSubSectionID *string        `db:"current_sub_section_id" json:"currentSubSectionId,omitempty"`
	CurrentHolderID     *string        `db:"current_holder_id" json:"currentHolderId,omitempty"`
	IsParked            bool           `db:"is_parked" json:"isParked"`
	ParkReason          *string        `db:"park_reason" json:"parkReason,omitempty"`
	ParkedAt            *time.Time     `db:"parked_at" json:"parkedAt,omitempty"`
	ParkedBy            *string        `db:"parked_by" json:"parkedBy,omitempty"`
	StatusBeforePark    *string        `db:"status_before_park" json:"-"`
	ReturnCount         int            `db:"return_count" json:"returnCount"`
	ReceivedBy          string         `db:"received_by" json:"receivedBy"`
	Version             int64          `db:"version" json:"version"`

	// Bill
	InvoiceNumber    *string        `db:"invoice_number" json:"invoiceNumber,omitempty"`
	VendorName       *string        `db:"vendor_name" json:"vendorName,omitempty"`
	VendorGSTIN      *string        `db:"vendor_gstin" json:"vendorGstin,omitempty"`
	VendorPAN        *string        `db:"vendor_pan" json:"vendorPan,omitempty"`
	BillDate         *time.Time     `db:"bill_date" json:"billDate,omitempty"`
	BillAmount       *float64       `db:"bill_amount" json:"billAmount,omitempty"`
	NetPayableAmount *float64       `db:"net_payable_amount" json:"netPayableAmount,omitempty"`
	PaymentStatus    *PaymentStatus `db:"payment_status" json:"paymentStatus,omitempty"`
	PaidAt           *time.Time     `db:"paid_at" json:"paidAt,omitempty"`

	// Letter
	LetterType     *LetterType `db:"letter_type" json:"letterType,omitempty"`
	LetterDate     *time.Time  `db:"letter_date" json:"letterDate,omitempty"`
	ReplyRequired  bool        `db:"reply_required" json:"replyRequired"`
	ReplyDeadline  *time.Time  `db:"reply_deadline" json:"replyDeadline,omitempty"`
	RepliedAt      *time.Time  `db:"replied_at" json:"repliedAt,omitempty"`
	ReplyReference *string     `db:"reply_reference" json:"replyReference,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// HolderID returns the current holder or "" before the first movement.
func (d *Document) HolderID() string {
	if d == nil || d.CurrentHolderID == nil {
		return ""
	}
	return *d.CurrentHolderID
}

// Paid reports whether a bill has been settled.
func (d *Document) Paid() bool {
	return d.Kind == DocumentKindBill && d.PaymentStatus != nil && *d.PaymentStatus == PaymentPaid
}

// DocumentFilter constrains listing queries.
type DocumentFilter struct {
	Kind      DocumentKind
	Status    []DocumentStatus
	HolderID  string
	SectionID string
	Parked    *bool
	Search    string
	Page      int
	PageSize  int
}

// ForwardReason names the precondition that blocked a forward.
type ForwardReason string

const (
	ReasonNone                ForwardReason = ""
	ReasonStatusClosed        ForwardReason = "status-closed"
	ReasonPaymentPaid         ForwardReason = "payment-paid"
	ReasonLetterReplied       ForwardReason = "letter-replied"
	ReasonFutureDate          ForwardReason = "future-date"
	ReasonBeforeLastMovement  ForwardReason = "before-last-movement"
	ReasonRoleMismatch        ForwardReason = "role-mismatch"
	ReasonDocumentParked      ForwardReason = "document-parked"
	ReasonRecipientNotAllowed ForwardReason = "recipient-not-allowed"
)

// ForwardDecision is the outcome of a forwarding eligibility check.
type ForwardDecision struct {
	Allowed bool          `json:"allowed"`
	Reason  ForwardReason `json:"reason,omitempty"`
}
