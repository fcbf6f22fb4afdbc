// Package actions holds the server-side invoice mutations behind the dashboard forms.
//
// Every action validates before it touches the store, runs a single statement,
// and on success marks the invoice listing view stale. Nothing is returned as an
// error: the caller gets a models.Outcome and decides how to navigate.
package actions

import (
	"context"
	"strings"

	"github.com/mmdatafocus/invoices_backend/config"
	"github.com/mmdatafocus/invoices_backend/models"
	"github.com/mmdatafocus/invoices_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	MessageCreateMissingFields = "Missing Fields: Failed to Create Invoice"
	MessageUpdateMissingFields = "Missing Fields: Failed to Update Invoice"
	MessageDeleteMissingFields = "Missing Fields: Failed to Delete Invoice"

	MessageCreateDatabaseError = "Database Error: Failed to Create Invoice."
	MessageUpdateDatabaseError = "Database Error: Failed to Update Invoice."
	MessageDeleteDatabaseError = "Database Error: Failed to Delete Invoice."

	MessageInvoiceDeleted = "Invoice Deleted"
)

var tracer = otel.Tracer("invoices_backend/actions")

// ViewRevalidator marks a cached view stale.
type ViewRevalidator interface {
	Revalidate(ctx context.Context, path string) error
}

type InvoiceActions struct {
	store  models.InvoiceStore
	views  ViewRevalidator
	clock  utils.Clock
	logger *logrus.Logger
}

func NewInvoiceActions(store models.InvoiceStore, views ViewRevalidator, clock utils.Clock, logger *logrus.Logger) *InvoiceActions {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &InvoiceActions{store: store, views: views, clock: clock, logger: logger}
}

func (a *InvoiceActions) CreateInvoice(ctx context.Context, form models.InvoiceForm) models.Outcome {
	ctx, span := tracer.Start(ctx, "CreateInvoice")
	defer span.End()

	input, errs := models.ValidateInvoiceForm(form)
	if errs.HasErrors() {
		return finish(span, actionCreate, models.ValidationFailed(errs, MessageCreateMissingFields))
	}

	row := models.NewInvoiceRow{
		CustomerId: input.CustomerId,
		Amount:     input.AmountInCents(),
		Status:     input.Status,
		Date:       utils.Today(a.clock),
	}
	if err := a.store.InsertInvoice(ctx, row); err != nil {
		a.logStoreError(ctx, span, "CreateInvoice", "insert invoice", row, err)
		return finish(span, actionCreate, models.StoreFailed(MessageCreateDatabaseError))
	}

	a.revalidate(ctx, "CreateInvoice")
	return finish(span, actionCreate, models.Redirect(models.InvoicesPath))
}

// UpdateInvoice rewrites customer, amount and status. The issue date is kept.
func (a *InvoiceActions) UpdateInvoice(ctx context.Context, id string, form models.InvoiceForm) models.Outcome {
	id = strings.TrimSpace(id)
	ctx, span := tracer.Start(ctx, "UpdateInvoice", trace.WithAttributes(attribute.String("invoice.id", id)))
	defer span.End()

	errs := models.FieldErrors{}
	for field, msgs := range models.ValidateInvoiceId(id) {
		errs[field] = msgs
	}
	input, formErrs := models.ValidateInvoiceForm(form)
	for field, msgs := range formErrs {
		errs[field] = msgs
	}
	if errs.HasErrors() {
		return finish(span, actionUpdate, models.ValidationFailed(errs, MessageUpdateMissingFields))
	}

	amount := input.AmountInCents()
	if err := a.store.UpdateInvoice(ctx, id, input.CustomerId, amount, input.Status); err != nil {
		a.logStoreError(ctx, span, "UpdateInvoice", "update invoice", map[string]any{
			"id":          id,
			"customer_id": input.CustomerId,
			"amount":      amount,
			"status":      input.Status,
		}, err)
		return finish(span, actionUpdate, models.StoreFailed(MessageUpdateDatabaseError))
	}

	a.revalidate(ctx, "UpdateInvoice")
	return finish(span, actionUpdate, models.Redirect(models.InvoicesPath))
}

// DeleteInvoice succeeds for ids that do not exist. The caller stays on the current view.
func (a *InvoiceActions) DeleteInvoice(ctx context.Context, id string) models.Outcome {
	id = strings.TrimSpace(id)
	ctx, span := tracer.Start(ctx, "DeleteInvoice", trace.WithAttributes(attribute.String("invoice.id", id)))
	defer span.End()

	if errs := models.ValidateInvoiceId(id); errs.HasErrors() {
		return finish(span, actionDelete, models.ValidationFailed(errs, MessageDeleteMissingFields))
	}

	if err := a.store.DeleteInvoice(ctx, id); err != nil {
		a.logStoreError(ctx, span, "DeleteInvoice", "delete invoice", map[string]any{"id": id}, err)
		return finish(span, actionDelete, models.StoreFailed(MessageDeleteDatabaseError))
	}

	a.revalidate(ctx, "DeleteInvoice")
	return finish(span, actionDelete, models.Succeeded(MessageInvoiceDeleted))
}

func (a *InvoiceActions) ListInvoices(ctx context.Context) ([]*models.Invoice, error) {
	ctx, span := tracer.Start(ctx, "ListInvoices")
	defer span.End()
	return a.store.ListInvoices(ctx)
}

func (a *InvoiceActions) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	ctx, span := tracer.Start(ctx, "GetInvoice", trace.WithAttributes(attribute.String("invoice.id", id)))
	defer span.End()
	return a.store.GetInvoice(ctx, id)
}

// revalidate runs after the write committed, so a failure here is only logged.
func (a *InvoiceActions) revalidate(ctx context.Context, funcName string) {
	if a.views == nil {
		return
	}
	if err := a.views.Revalidate(ctx, models.InvoicesPath); err != nil {
		revalidateFailures.Inc()
		cid, _ := utils.GetCorrelationIdFromContext(ctx)
		a.logger.WithFields(logrus.Fields{
			"module":         "Invoice",
			"funcName":       funcName,
			"path":           models.InvoicesPath,
			"correlation_id": cid,
		}).Warn("view revalidation failed: " + err.Error())
	}
}

func (a *InvoiceActions) logStoreError(ctx context.Context, span trace.Span, funcName, what string, data any, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	config.LogError(a.logger, "Invoice", funcName, what+" correlation_id="+cid, data, err)
}

func finish(span trace.Span, action string, outcome models.Outcome) models.Outcome {
	span.SetAttributes(attribute.String("invoice.outcome", outcome.Kind.String()))
	actionOutcomes.WithLabelValues(action, outcome.Kind.String()).Inc()
	return outcome
}
