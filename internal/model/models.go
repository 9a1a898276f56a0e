// models.go
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// Statuses en orden de ciclo de vida.
var Statuses = []OrderStatus{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}

func (s OrderStatus) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

type PaymentMethod string

const (
	MethodStripe       PaymentMethod = "stripe"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodUPI          PaymentMethod = "upi"
	MethodGPay         PaymentMethod = "gpay"
	MethodPhonePe      PaymentMethod = "phonepe"
	MethodPaytm        PaymentMethod = "paytm"
)

// Online indica si el pago pasa por la pasarela (payment intent) en vez de
// una referencia manual.
func (m PaymentMethod) Online() bool {
	return m == MethodStripe
}

type Order struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID             primitive.ObjectID `bson:"user" json:"user"`
	Items              []OrderItem        `bson:"items" json:"items"`
	ShippingInfo       ShippingInfo       `bson:"shippingInfo" json:"shippingInfo"`
	PaymentMethod      PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	TotalAmount        float64            `bson:"totalAmount" json:"totalAmount"`
	ShippingCost       float64            `bson:"shippingCost" json:"shippingCost"`
	Status             OrderStatus        `bson:"status" json:"status"`
	PaymentStatus      PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	PaymentIntentID    string             `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	TransactionNumber  string             `bson:"transactionNumber,omitempty" json:"transactionNumber,omitempty"`
	TrackingNumber     string             `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	Notes              string             `bson:"notes,omitempty" json:"notes,omitempty"`
	EstimatedDelivery  *time.Time         `bson:"estimatedDelivery,omitempty" json:"estimatedDelivery,omitempty"`
	PaymentCompletedAt *time.Time         `bson:"paymentCompletedAt,omitempty" json:"paymentCompletedAt,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderItem es una copia del producto al momento de la compra; no se actualiza
// si el catálogo cambia después.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Size      string             `bson:"size,omitempty" json:"size,omitempty"`
	Image     string             `bson:"image" json:"image"`
}

type ShippingInfo struct {
	FullName string `bson:"fullName" json:"fullName"`
	Email    string `bson:"email" json:"email"`
	Phone    string `bson:"phone" json:"phone"`
	Address  string `bson:"address" json:"address"`
	City     string `bson:"city" json:"city"`
	State    string `bson:"state" json:"state"`
	Pincode  string `bson:"pincode" json:"pincode"`
}
