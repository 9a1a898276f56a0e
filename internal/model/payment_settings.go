package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentSettings guarda los datos bancarios/UPI que se muestran al comprador
// para pagos manuales. Solo uno puede estar activo.
type PaymentSettings struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BankName            string             `bson:"bankName" json:"bankName"`
	AccountNumber       string             `bson:"accountNumber" json:"accountNumber"`
	AccountHolderName   string             `bson:"accountHolderName" json:"accountHolderName"`
	IFSCCode            string             `bson:"ifscCode" json:"ifscCode"`
	BranchName          string             `bson:"branchName" json:"branchName"`
	UPIID               string             `bson:"upiId" json:"upiId"`
	UPIName             string             `bson:"upiName" json:"upiName"`
	QRCodeImage         string             `bson:"qrCodeImage" json:"qrCodeImage"`
	GPayNumber          string             `bson:"gpayNumber" json:"gpayNumber"`
	PhonePeNumber       string             `bson:"phonepeNumber" json:"phonepeNumber"`
	PaytmNumber         string             `bson:"paytmNumber" json:"paytmNumber"`
	PaymentInstructions string             `bson:"paymentInstructions" json:"paymentInstructions"`
	IsActive            bool               `bson:"isActive" json:"isActive"`
	CreatedBy           primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}
