package dto

import "storefront-api/internal/model"

type CreateProductRequest struct {
	Name        string         `json:"name" binding:"required,min=2,max=200"`
	Description string         `json:"description" binding:"required,min=10,max=1000"`
	Price       *float64       `json:"price" binding:"required,gte=0"`
	Category    model.Category `json:"category" binding:"required,oneof=sarees kurtis western ethnic accessories"`
	Images      []string       `json:"images" binding:"required,min=1,dive,required"`
	Sizes       []string       `json:"sizes"`
	IsActive    *bool          `json:"isActive"`
}

// UpdateProductRequest es parcial: nil = no cambia.
type UpdateProductRequest struct {
	Name        *string         `json:"name" binding:"omitempty,min=2,max=200"`
	Description *string         `json:"description" binding:"omitempty,min=10,max=1000"`
	Price       *float64        `json:"price" binding:"omitempty,gte=0"`
	Category    *model.Category `json:"category" binding:"omitempty,oneof=sarees kurtis western ethnic accessories"`
	Images      []string        `json:"images" binding:"omitempty,min=1,dive,required"`
	Sizes       []string        `json:"sizes"`
	IsActive    *bool           `json:"isActive"`
}

// PaymentSettingsRequest sirve para crear y para actualizar (PUT reemplaza los
// campos de presentación). IsActive nil conserva el estado actual.
type PaymentSettingsRequest struct {
	BankName            string `json:"bankName"`
	AccountNumber       string `json:"accountNumber"`
	AccountHolderName   string `json:"accountHolderName"`
	IFSCCode            string `json:"ifscCode"`
	BranchName          string `json:"branchName"`
	UPIID               string `json:"upiId"`
	UPIName             string `json:"upiName"`
	QRCodeImage         string `json:"qrCodeImage"`
	GPayNumber          string `json:"gpayNumber"`
	PhonePeNumber       string `json:"phonepeNumber"`
	PaytmNumber         string `json:"paytmNumber"`
	PaymentInstructions string `json:"paymentInstructions"`
	IsActive            *bool  `json:"isActive"`
}

// PublicPaymentSettings es lo único que ve el comprador.
type PublicPaymentSettings struct {
	BankName            string `json:"bankName"`
	AccountNumber       string `json:"accountNumber"`
	AccountHolderName   string `json:"accountHolderName"`
	IFSCCode            string `json:"ifscCode"`
	UPIID               string `json:"upiId"`
	UPIName             string `json:"upiName"`
	QRCodeImage         string `json:"qrCodeImage"`
	GPayNumber          string `json:"gpayNumber"`
	PhonePeNumber       string `json:"phonepeNumber"`
	PaytmNumber         string `json:"paytmNumber"`
	PaymentInstructions string `json:"paymentInstructions"`
}

func NewPublicPaymentSettings(s *model.PaymentSettings) PublicPaymentSettings {
	return PublicPaymentSettings{
		BankName:            s.BankName,
		AccountNumber:       s.AccountNumber,
		AccountHolderName:   s.AccountHolderName,
		IFSCCode:            s.IFSCCode,
		UPIID:               s.UPIID,
		UPIName:             s.UPIName,
		QRCodeImage:         s.QRCodeImage,
		GPayNumber:          s.GPayNumber,
		PhonePeNumber:       s.PhonePeNumber,
		PaytmNumber:         s.PaytmNumber,
		PaymentInstructions: s.PaymentInstructions,
	}
}
