package models

import (
	"errors"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/invoices_backend/utils"
	"github.com/shopspring/decimal"
)

const (
	FieldId         = "id"
	FieldCustomerId = "customerId"
	FieldAmount     = "amount"
	FieldStatus     = "status"
)

var fieldMessages = map[string]string{
	FieldId:         "Missing invoice id.",
	FieldCustomerId: "Please select a customer.",
	FieldAmount:     "Please enter an amount greater than $0.",
	FieldStatus:     "Please select an invoice status.",
}

const amountTooLargeMessage = "Please enter a smaller amount."

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("form")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// InvoiceForm is the raw submission, every value still a string.
type InvoiceForm struct {
	CustomerId string
	Amount     string
	Status     string
}

func NewInvoiceForm(values map[string]string) InvoiceForm {
	return InvoiceForm{
		CustomerId: values[FieldCustomerId],
		Amount:     values[FieldAmount],
		Status:     values[FieldStatus],
	}
}

func InvoiceFormFromValues(values url.Values) InvoiceForm {
	return InvoiceForm{
		CustomerId: values.Get(FieldCustomerId),
		Amount:     values.Get(FieldAmount),
		Status:     values.Get(FieldStatus),
	}
}

// InvoiceInput is a submission that passed validation.
// The amount is checked after rounding to cents, so sub-cent amounts fail.
type InvoiceInput struct {
	CustomerId string          `form:"customerId" validate:"required"`
	Amount     decimal.Decimal `form:"-" validate:"-"`
	Cents      int64           `form:"amount" validate:"gt=0"`
	Status     InvoiceStatus   `form:"status" validate:"oneof=pending paid"`
}

func (in InvoiceInput) AmountInCents() int64 {
	return in.Cents
}

// ValidateInvoiceForm coerces the submission and reports every failing field.
// An amount that does not parse is reported like a non-positive one.
func ValidateInvoiceForm(form InvoiceForm) (*InvoiceInput, FieldErrors) {
	amount, err := utils.ParseAmount(form.Amount)
	if err != nil {
		amount = decimal.Zero
	}
	cents, rangeErr := utils.ToMinorUnits(amount)
	input := InvoiceInput{
		CustomerId: strings.TrimSpace(form.CustomerId),
		Amount:     amount,
		Cents:      cents,
		Status:     InvoiceStatus(form.Status),
	}

	errs := FieldErrors{}
	if err := validate.Struct(input); err != nil {
		errs = toFieldErrors(err)
	}
	if rangeErr != nil && amount.IsPositive() {
		errs[FieldAmount] = []string{amountTooLargeMessage}
	}
	if errs.HasErrors() {
		return nil, errs
	}
	return &input, nil
}

// ValidateInvoiceId checks the path identifier of update and delete.
func ValidateInvoiceId(id string) FieldErrors {
	if err := validate.Var(strings.TrimSpace(id), "required"); err != nil {
		errs := FieldErrors{}
		errs.Add(FieldId, fieldMessages[FieldId])
		return errs
	}
	return nil
}

func toFieldErrors(err error) FieldErrors {
	errs := FieldErrors{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("form", err.Error())
		return errs
	}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = fe.Error()
		}
		errs.Add(fe.Field(), msg)
	}
	return errs
}
