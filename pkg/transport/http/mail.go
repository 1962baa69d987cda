package http

import (
	"errors"
	"net/http"

	"github.com/bgmsons/catalog/pkg/api"
	"github.com/bgmsons/catalog/pkg/mail"
	"github.com/bgmsons/catalog/pkg/transport"
)

// handleSendEnquiry handles POST /api/mail/send-enquiry.
func (a *Adapter) handleSendEnquiry(w http.ResponseWriter, r *http.Request) {
	a.sendEnquiry(w, r, mail.KindGeneral)
}

// handleSendProductEnquiry handles POST /api/mail/send-product-enquiry.
func (a *Adapter) handleSendProductEnquiry(w http.ResponseWriter, r *http.Request) {
	a.sendEnquiry(w, r, mail.KindProduct)
}

func (a *Adapter) sendEnquiry(w http.ResponseWriter, r *http.Request, kind mail.Kind) {
	if a.deps.Mail == nil {
		transport.WriteAPIError(w, api.NewUnavailableError("mail delivery is not configured"))
		return
	}

	var req api.EnquiryRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	err := a.deps.Mail.Send(r.Context(), kind, mail.Enquiry{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Company:         req.Company,
		ProductInterest: req.ProductInterest,
		Industry:        req.Industry,
		Message:         req.Message,
		ProductID:       req.ProductID,
	})
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, mail.ErrInvalidEnquiry):
		transport.WriteAPIError(w, api.NewInvalidRequestError("", err.Error()))
	case errors.Is(err, mail.ErrDelivery):
		transport.WriteAPIError(w, api.NewUpstreamError("failed to send enquiry"))
	default:
		a.internalError(w, r, "sending enquiry failed", err)
	}
}
