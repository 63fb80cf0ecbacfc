package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/directory-backend/internal/models"
	"github.com/ignatzorin/directory-backend/internal/onboarding"
)

func decodeWizard(t *testing.T, raw json.RawMessage) WizardResponse {
	t.Helper()
	var w WizardResponse
	require.NoError(t, json.Unmarshal(raw, &w))
	return w
}

func TestOnboardingHandler_FullFlow(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodPost, "/api/onboarding", "")
	require.Equal(t, http.StatusCreated, w.Code)
	wizard := decodeWizard(t, resp.Data)
	assert.Equal(t, onboarding.StateNicheSelect, wizard.State)
	assert.Equal(t, []onboarding.Event{onboarding.EventSelectNiche}, wizard.Allowed)
	base := "/api/onboarding/" + wizard.ID.String()

	w, resp = env.do(t, http.MethodPost, base+"/niche", `{"user_type":"freelancer"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, onboarding.StateProfileForm, decodeWizard(t, resp.Data).State)

	w, resp = env.do(t, http.MethodPost, base+"/profile", `{"name":"  Wanjiru  ","primary_skill":"Illustration","hourly_rate":25}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	wizard = decodeWizard(t, resp.Data)
	assert.Equal(t, onboarding.StatePreview, wizard.State)
	assert.ElementsMatch(t, []onboarding.Event{onboarding.EventEdit, onboarding.EventConfirm}, wizard.Allowed)

	w, resp = env.do(t, http.MethodGet, base+"/preview", "")
	require.Equal(t, http.StatusOK, w.Code)
	var preview models.Profile
	require.NoError(t, json.Unmarshal(resp.Data, &preview))
	assert.Equal(t, "Wanjiru", preview.Name)
	assert.Equal(t, models.VisibilityPublic, preview.Visibility)

	w, resp = env.do(t, http.MethodPost, base+"/confirm", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var confirmed struct {
		Wizard  WizardResponse `json:"wizard"`
		Profile models.Profile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &confirmed))
	assert.Equal(t, onboarding.StateConfirmed, confirmed.Wizard.State)
	assert.Empty(t, confirmed.Wizard.Allowed)
	require.NotEqual(t, uuid.Nil, confirmed.Profile.ID)

	// Новый профиль сразу виден в каталоге, а его категория в фасетах.
	w, resp = env.do(t, http.MethodGet, "/api/profiles/"+confirmed.Profile.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = env.do(t, http.MethodGet, "/api/directory/categories?tab=users", "")
	require.Equal(t, http.StatusOK, w.Code)
	var facets struct {
		Categories []string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &facets))
	assert.Equal(t, []string{"Illustration", "Plumbing", "Writing"}, facets.Categories)
}

func TestOnboardingHandler_Errors(t *testing.T) {
	env := newTestEnv(t)

	_, resp := env.do(t, http.MethodPost, "/api/onboarding", "")
	base := "/api/onboarding/" + decodeWizard(t, resp.Data).ID.String()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{name: "confirm before preview", method: http.MethodPost, path: base + "/confirm", status: http.StatusConflict, code: "INVALID_TRANSITION"},
		{name: "edit from niche select", method: http.MethodPost, path: base + "/edit", status: http.StatusConflict, code: "INVALID_TRANSITION"},
		{name: "unknown niche", method: http.MethodPost, path: base + "/niche", body: `{"user_type":"astronaut"}`, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "missing user type", method: http.MethodPost, path: base + "/niche", body: `{}`, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "malformed body", method: http.MethodPost, path: base + "/niche", body: `{"user_type":`, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "unknown wizard", method: http.MethodGet, path: "/api/onboarding/" + uuid.NewString(), status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "malformed wizard id", method: http.MethodGet, path: "/api/onboarding/abc", status: http.StatusBadRequest, code: "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestOnboardingHandler_ProfileValidation(t *testing.T) {
	env := newTestEnv(t)

	_, resp := env.do(t, http.MethodPost, "/api/onboarding", "")
	base := "/api/onboarding/" + decodeWizard(t, resp.Data).ID.String()

	w, _ := env.do(t, http.MethodPost, base+"/niche", `{"user_type":"business"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = env.do(t, http.MethodPost, base+"/profile", `{"business_type":"Restaurant"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	// Бизнесу обязателен business_type.
	w, resp = env.do(t, http.MethodPost, base+"/profile", `{"name":"Mama Oliech"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "business_type")

	// Неудачный шаг не меняет анкету.
	w, resp = env.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, onboarding.StateProfileForm, decodeWizard(t, resp.Data).State)

	w, resp = env.do(t, http.MethodPost, base+"/back", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, onboarding.StateNicheSelect, decodeWizard(t, resp.Data).State)
}
