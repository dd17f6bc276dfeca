package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devroom/checkout/internal/checkout/domain"
	"github.com/devroom/checkout/internal/checkout/render"
)

func (s *Server) RegisterCheckoutRoutes() {
	page := s.engine.Group("/checkout")
	page.GET("/:payment_id", s.GetCheckoutPage)
	page.POST("/:payment_id/form/toggle", s.ToggleBusinessForm)
	page.POST("/:payment_id/business", s.SubmitBusinessForm)
	page.POST("/:payment_id/invoices/:invoice_id/pay", s.PayInvoice)

	api := s.engine.Group("/api/checkout")
	api.GET("/:payment_id", s.GetCheckoutState)
	api.POST("/:payment_id/form/toggle", s.APIToggleBusinessForm)
	api.POST("/:payment_id/form/field", s.APIEditFormField)
	api.POST("/:payment_id/business", s.APISubmitBusiness)
	api.POST("/:payment_id/invoices/:invoice_id/pay", s.APIPayInvoice)
}

// GetCheckoutPage serves the checkout page. An existing Ready session for the
// same payment is reused so post-redirect-get round trips keep their state;
// anything else is treated as a fresh page load and starts a new session.
func (s *Server) GetCheckoutPage(c *gin.Context) {
	paymentID := c.Param("payment_id")

	sess := s.resumeSession(c, paymentID)
	if sess == nil {
		started, err := s.checkoutSvc.Start(c.Request.Context(), domain.StartSessionRequest{
			PaymentID: paymentID,
			Geo:       geolocationFromHeaders(c),
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		sess = started
		s.sessions.Set(c, sess.ID)
	}

	s.renderPage(c, sess)
}

func (s *Server) ToggleBusinessForm(c *gin.Context) {
	sid, ok := s.sessions.ReadSessionID(c)
	if ok {
		if _, err := s.checkoutSvc.ToggleForm(c.Request.Context(), sid); err != nil {
			s.log.Warn("toggle form rejected", zap.String("session_id", sid), zap.Error(err))
		}
	}
	s.redirectToPage(c)
}

// SubmitBusinessForm handles the HTML form post. Validation failures and
// upstream errors are committed to the session and the redirect re-renders
// them, so the handler always answers 303.
func (s *Server) SubmitBusinessForm(c *gin.Context) {
	sid, ok := s.sessions.ReadSessionID(c)
	if !ok {
		s.redirectToPage(c)
		return
	}

	form := domain.BusinessFormData{
		Name:       c.PostForm("name"),
		Country:    c.PostForm("country"),
		Address:    c.PostForm("address"),
		City:       c.PostForm("city"),
		PostalCode: c.PostForm("postalCode"),
		VATID:      c.PostForm("vatId"),
	}

	if _, err := s.checkoutSvc.SubmitBusiness(c.Request.Context(), sid, form); err != nil {
		s.log.Info("business submit rejected", zap.String("session_id", sid), zap.Error(err))
	}
	s.redirectToPage(c)
}

func (s *Server) PayInvoice(c *gin.Context) {
	sid, ok := s.sessions.ReadSessionID(c)
	if !ok {
		s.redirectToPage(c)
		return
	}

	url, err := s.checkoutSvc.InvoiceRedirect(c.Request.Context(), sid, c.Param("invoice_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, url)
}

// checkoutStateResponse is the JSON view of a session.
type checkoutStateResponse struct {
	Session *domain.Session `json:"session"`
	Summary *domain.Summary `json:"summary,omitempty"`
}

func (s *Server) GetCheckoutState(c *gin.Context) {
	paymentID := c.Param("payment_id")

	sess := s.resumeSession(c, paymentID)
	if sess == nil {
		started, err := s.checkoutSvc.Start(c.Request.Context(), domain.StartSessionRequest{
			PaymentID: paymentID,
			Geo:       geolocationFromHeaders(c),
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		sess = started
		s.sessions.Set(c, sess.ID)
	}

	c.JSON(http.StatusOK, s.stateResponse(sess))
}

func (s *Server) APIToggleBusinessForm(c *gin.Context) {
	sid, ok := s.sessions.ReadSessionID(c)
	if !ok {
		AbortWithError(c, domain.ErrSessionNotFound)
		return
	}

	sess, err := s.checkoutSvc.ToggleForm(c.Request.Context(), sid)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.stateResponse(sess))
}

type editFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

func (s *Server) APIEditFormField(c *gin.Context) {
	sid, ok := s.sessions.ReadSessionID(c)
	if !ok {
		AbortWithError(c, domain.ErrSessionNotFound)
		return
	}

	var req editFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, domain.ErrUnknownFormField)
		return
	}

	sess, err := s.checkoutSvc.EditFormField(c.Request.Context(), sid, req.Field, req.Value)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.stateResponse(sess))
}

func (s *Server) APISubmitBusiness(c *gin.Context) {
	sid, ok := s.sessions.ReadSessionID(c)
	if !ok {
		AbortWithError(c, domain.ErrSessionNotFound)
		return
	}

	var form domain.BusinessFormData
	if err := c.ShouldBindJSON(&form); err != nil {
		AbortWithError(c, domain.ErrUnknownFormField)
		return
	}

	sess, err := s.checkoutSvc.SubmitBusiness(c.Request.Context(), sid, form)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.stateResponse(sess))
}

func (s *Server) APIPayInvoice(c *gin.Context) {
	sid, ok := s.sessions.ReadSessionID(c)
	if !ok {
		AbortWithError(c, domain.ErrSessionNotFound)
		return
	}

	url, err := s.checkoutSvc.InvoiceRedirect(c.Request.Context(), sid, c.Param("invoice_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// resumeSession returns the cookie-bound session when it is Ready and belongs
// to the requested payment, nil otherwise. Error sessions are never resumed:
// a full page load is the recovery path and gets a fresh fetch.
func (s *Server) resumeSession(c *gin.Context, paymentID string) *domain.Session {
	sid, ok := s.sessions.ReadSessionID(c)
	if !ok {
		return nil
	}

	sess, err := s.checkoutSvc.Get(c.Request.Context(), sid)
	if err != nil || sess.State != domain.SessionReady {
		return nil
	}
	if strings.TrimSpace(paymentID) != sess.PaymentID {
		return nil
	}
	return sess
}

func (s *Server) stateResponse(sess *domain.Session) checkoutStateResponse {
	resp := checkoutStateResponse{Session: sess}
	if sess.State == domain.SessionReady && sess.Record != nil {
		summary := domain.BuildSummary(sess.Record, sess.Jurisdiction, s.taxTable())
		resp.Summary = &summary
	}
	return resp
}

func (s *Server) renderPage(c *gin.Context, sess *domain.Session) {
	input := render.PageInput{Session: sess}
	if sess.State == domain.SessionReady && sess.Record != nil {
		summary := domain.BuildSummary(sess.Record, sess.Jurisdiction, s.taxTable())
		input.Summary = &summary
		input.Countries = s.taxTable().Entries()
	}

	html, err := s.renderer.RenderPage(input)
	if err != nil {
		s.log.Error("render checkout page", zap.String("session_id", sess.ID), zap.Error(err))
		AbortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (s *Server) redirectToPage(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/checkout/"+c.Param("payment_id"))
}
