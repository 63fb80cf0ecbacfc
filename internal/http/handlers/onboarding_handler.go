package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/directory-backend/internal/http/handlers/common"
	"github.com/ignatzorin/directory-backend/internal/http/response"
	"github.com/ignatzorin/directory-backend/internal/onboarding"
)

// OnboardingHandler ведёт пользователя по шагам анкеты.
type OnboardingHandler struct {
	wizards *onboarding.Service
}

// NewOnboardingHandler создаёт хэндлер анкеты.
func NewOnboardingHandler(wizards *onboarding.Service) *OnboardingHandler {
	return &OnboardingHandler{wizards: wizards}
}

// WizardResponse анкета вместе с доступными переходами.
type WizardResponse struct {
	onboarding.Wizard
	Allowed []onboarding.Event `json:"allowed"`
}

func wizardResponse(w onboarding.Wizard) WizardResponse {
	var allowed []onboarding.Event
	for _, ev := range []onboarding.Event{
		onboarding.EventSelectNiche,
		onboarding.EventBack,
		onboarding.EventSubmitProfile,
		onboarding.EventEdit,
		onboarding.EventConfirm,
	} {
		if w.Can(ev) {
			allowed = append(allowed, ev)
		}
	}
	return WizardResponse{Wizard: w, Allowed: allowed}
}

// Start POST /api/onboarding
func (h *OnboardingHandler) Start(c *gin.Context) {
	response.Created(c, wizardResponse(h.wizards.Start()))
}

// Get GET /api/onboarding/:id
func (h *OnboardingHandler) Get(c *gin.Context) {
	id, err := common.PathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	w, err := h.wizards.Get(id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, wizardResponse(w))
}

// SelectNiche POST /api/onboarding/:id/niche
func (h *OnboardingHandler) SelectNiche(c *gin.Context) {
	id, err := common.PathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req onboarding.NichePayload
	if err := common.BindAndValidate(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	h.respond(c)(h.wizards.SelectNiche(id, req))
}

// SubmitProfile POST /api/onboarding/:id/profile
func (h *OnboardingHandler) SubmitProfile(c *gin.Context) {
	id, err := common.PathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req onboarding.ProfilePayload
	if err := common.BindAndValidate(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	h.respond(c)(h.wizards.SubmitProfile(id, req))
}

// Edit POST /api/onboarding/:id/edit
func (h *OnboardingHandler) Edit(c *gin.Context) {
	id, err := common.PathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.respond(c)(h.wizards.Edit(id))
}

// Back POST /api/onboarding/:id/back
func (h *OnboardingHandler) Back(c *gin.Context) {
	id, err := common.PathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.respond(c)(h.wizards.Back(id))
}

// Preview GET /api/onboarding/:id/preview
func (h *OnboardingHandler) Preview(c *gin.Context) {
	id, err := common.PathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	profile, err := h.wizards.Preview(id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, profile)
}

// Confirm POST /api/onboarding/:id/confirm
func (h *OnboardingHandler) Confirm(c *gin.Context) {
	id, err := common.PathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	profile, w, err := h.wizards.Confirm(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Created(c, gin.H{
		"wizard":  wizardResponse(w),
		"profile": profile,
	})
}

func (h *OnboardingHandler) respond(c *gin.Context) func(onboarding.Wizard, error) {
	return func(w onboarding.Wizard, err error) {
		if err != nil {
			_ = c.Error(err)
			return
		}
		response.Success(c, wizardResponse(w))
	}
}
