package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/invoices_backend/actions"
	"github.com/mmdatafocus/invoices_backend/models"
	"github.com/mmdatafocus/invoices_backend/utils"
	"github.com/sirupsen/logrus"
)

const messageFetchFailed = "Database Error: Failed to Fetch Invoices."

// invoiceView is the rendered shape of an invoice row, also what the view cache holds.
type invoiceView struct {
	ID         string               `json:"id"`
	CustomerId string               `json:"customer_id"`
	Amount     int64                `json:"amount"`
	Status     models.InvoiceStatus `json:"status"`
	Date       string               `json:"date"`
}

type invoiceListView struct {
	Invoices []invoiceView `json:"invoices"`
}

func toInvoiceView(inv *models.Invoice) invoiceView {
	return invoiceView{
		ID:         inv.ID,
		CustomerId: inv.CustomerId,
		Amount:     inv.Amount,
		Status:     inv.Status,
		Date:       inv.DateString(),
	}
}

type invoiceHandlers struct {
	actions *actions.InvoiceActions
	views   *utils.ViewCache
	logger  *logrus.Logger
}

func registerInvoiceRoutes(r gin.IRouter, h *invoiceHandlers) {
	g := r.Group(models.InvoicesPath)
	g.GET("", h.listInvoices)
	g.POST("", h.createInvoice)
	g.GET("/:id", h.getInvoice)
	g.POST("/:id/edit", h.updateInvoice)
	g.PUT("/:id/edit", h.updateInvoice)
	g.POST("/:id/delete", h.deleteInvoice)
	g.DELETE("/:id", h.deleteInvoice)
}

func postedInvoiceForm(c *gin.Context) models.InvoiceForm {
	return models.NewInvoiceForm(map[string]string{
		models.FieldCustomerId: c.PostForm(models.FieldCustomerId),
		models.FieldAmount:     c.PostForm(models.FieldAmount),
		models.FieldStatus:     c.PostForm(models.FieldStatus),
	})
}

func (h *invoiceHandlers) createInvoice(c *gin.Context) {
	writeOutcome(c, h.actions.CreateInvoice(c.Request.Context(), postedInvoiceForm(c)))
}

func (h *invoiceHandlers) updateInvoice(c *gin.Context) {
	writeOutcome(c, h.actions.UpdateInvoice(c.Request.Context(), c.Param("id"), postedInvoiceForm(c)))
}

func (h *invoiceHandlers) deleteInvoice(c *gin.Context) {
	writeOutcome(c, h.actions.DeleteInvoice(c.Request.Context(), c.Param("id")))
}

// writeOutcome leaves navigation to the client: a redirect outcome becomes 303 See Other.
func writeOutcome(c *gin.Context, outcome models.Outcome) {
	switch outcome.Kind {
	case models.OutcomeSuccess:
		if outcome.RedirectTo != "" {
			c.Redirect(http.StatusSeeOther, outcome.RedirectTo)
			return
		}
		c.JSON(http.StatusOK, outcome.State)
	case models.OutcomeValidationFailure:
		c.JSON(http.StatusUnprocessableEntity, outcome.State)
	default:
		c.JSON(http.StatusInternalServerError, outcome.State)
	}
}

func (h *invoiceHandlers) listInvoices(c *gin.Context) {
	ctx := c.Request.Context()

	var cached invoiceListView
	version, hit, err := h.views.Load(ctx, models.InvoicesPath, &cached)
	if err != nil {
		h.logger.WithFields(logrus.Fields{"path": models.InvoicesPath}).Warn("view cache load failed: " + err.Error())
	}
	if hit {
		c.Header("X-View-Cache", "hit")
		c.JSON(http.StatusOK, cached)
		return
	}

	started := time.Now()
	invoices, err := h.actions.ListInvoices(ctx)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": messageFetchFailed})
		return
	}

	view := invoiceListView{Invoices: make([]invoiceView, 0, len(invoices))}
	for _, inv := range invoices {
		view.Invoices = append(view.Invoices, toInvoiceView(inv))
	}
	// never served if a write revalidated the path after Load
	if err := h.views.Store(ctx, models.InvoicesPath, version, view); err != nil {
		h.logger.WithFields(logrus.Fields{"path": models.InvoicesPath}).Warn("view cache store failed: " + err.Error())
	}
	h.logger.WithFields(logrus.Fields{
		"path":  models.InvoicesPath,
		"rows":  len(view.Invoices),
		"ms":    time.Since(started).Milliseconds(),
		"cache": "miss",
	}).Debug("rendered invoice listing")

	c.Header("X-View-Cache", "miss")
	c.JSON(http.StatusOK, view)
}

func (h *invoiceHandlers) getInvoice(c *gin.Context) {
	inv, err := h.actions.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Invoice not found."})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": messageFetchFailed})
		return
	}
	c.JSON(http.StatusOK, toInvoiceView(inv))
}
