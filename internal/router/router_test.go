package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blues/campaignd/internal/chain"
	"github.com/blues/campaignd/internal/handler"
	"github.com/blues/campaignd/internal/logic"
	"github.com/blues/campaignd/internal/model"
	"github.com/blues/campaignd/internal/store"
	"github.com/blues/campaignd/internal/wallet"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerAddr    = "0x1111111111111111111111111111111111111111"
	strangerAddr = "0x2222222222222222222222222222222222222222"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T, account string, ledger *chain.MemoryLedger, history *handler.HistoryHandler) *gin.Engine {
	t.Helper()
	l := logic.NewCampaignLogic(store.New(), wallet.NewStaticConnector(account), chain.NewProvider(chain.NewMemoryFactory(ledger)))
	if account != "" {
		require.NoError(t, l.Connect(context.Background()))
	}
	return Setup(handler.NewCampaignHandler(l), history)
}

func do(t *testing.T, r *gin.Engine, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// gin 默认的 404 响应不是 JSON，忽略解析错误
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

func TestHealth(t *testing.T) {
	r := newServer(t, ownerAddr, chain.NewMemoryLedger(), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestCampaignLifecycle(t *testing.T) {
	r := newServer(t, ownerAddr, chain.NewMemoryLedger(), nil)

	code, env := do(t, r, http.MethodPost, "/api/v1/campaigns", map[string]string{
		"title":       "Solar roof",
		"description": "Panels for the school",
		"target":      "10",
		"deadline":    "2030-01-01",
		"image":       "https://example.com/roof.png",
		"owner":       strangerAddr,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, env = do(t, r, http.MethodGet, "/api/v1/campaigns", nil)
	require.Equal(t, http.StatusOK, code)
	var list []handler.CampaignResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, ownerAddr, list[0].Owner)
	assert.Equal(t, "10", list[0].Target)
	assert.Equal(t, model.CampaignStatusOpen, list[0].Status)

	code, env = do(t, r, http.MethodPost, "/api/v1/campaigns/0/donations", map[string]string{"amount": "10"})
	require.Equal(t, http.StatusOK, code, env.Message)
	var campaign handler.CampaignResponse
	require.NoError(t, json.Unmarshal(env.Data, &campaign))
	assert.Equal(t, "10", campaign.AmountCollected)
	require.Len(t, campaign.Donations, 1)
	assert.Equal(t, ownerAddr, campaign.Donations[0].Donator)

	code, env = do(t, r, http.MethodPost, "/api/v1/campaigns/0/withdraw", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &campaign))
	assert.True(t, campaign.Withdrawn)

	code, env = do(t, r, http.MethodDelete, "/api/v1/campaigns/0", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Cannot delete campaign with donations", env.Message)

	code, env = do(t, r, http.MethodGet, "/api/v1/state", nil)
	require.Equal(t, http.StatusOK, code)
	var st handler.StateResponse
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, ownerAddr, st.Account)
	assert.False(t, st.Loading)
	assert.Equal(t, "Cannot delete campaign with donations", st.Error)
}

func TestDeleteCampaignRoute(t *testing.T) {
	ledger := chain.NewMemoryLedger()
	ledger.Seed(model.RawCampaign{Owner: ownerAddr, Title: "Empty"})
	r := newServer(t, ownerAddr, ledger, nil)

	code, _ := do(t, r, http.MethodGet, "/api/v1/campaigns", nil)
	require.Equal(t, http.StatusOK, code)

	code, env := do(t, r, http.MethodDelete, "/api/v1/campaigns/0", nil)
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = do(t, r, http.MethodGet, "/api/v1/campaigns/0", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestErrorMapping(t *testing.T) {
	ledger := chain.NewMemoryLedger()
	ledger.Seed(model.RawCampaign{Owner: ownerAddr, Title: "Owned elsewhere"})
	r := newServer(t, strangerAddr, ledger, nil)

	code, _ := do(t, r, http.MethodGet, "/api/v1/campaigns", nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = do(t, r, http.MethodGet, "/api/v1/campaigns/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := do(t, r, http.MethodPost, "/api/v1/campaigns/9/withdraw", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Campaign not found", env.Message)

	code, env = do(t, r, http.MethodPost, "/api/v1/campaigns/0/withdraw", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Only campaign owner can withdraw funds", env.Message)

	code, env = do(t, r, http.MethodPost, "/api/v1/campaigns/0/donations", map[string]string{"amount": "lots"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Invalid donation amount", env.Message)
	assert.False(t, env.Success)
}

func TestCreateWithoutWallet(t *testing.T) {
	r := newServer(t, "", chain.NewMemoryLedger(), nil)

	code, env := do(t, r, http.MethodPost, "/api/v1/campaigns", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "Wallet not connected", env.Message)
}

type fakeHistory struct{}

func (fakeHistory) ListTransactions(_ context.Context, campaignID int64, limit int) ([]model.TransactionModel, error) {
	return []model.TransactionModel{{CampaignId: campaignID, TxHash: "0xabc", Status: model.TxStatusConfirmed}}, nil
}

func (fakeHistory) ListEvents(_ context.Context, campaignID int64, limit int) ([]model.EventModel, error) {
	return []model.EventModel{{CampaignId: campaignID, EventName: "CampaignCreated"}}, nil
}

func TestHistoryRoutes(t *testing.T) {
	without := newServer(t, ownerAddr, chain.NewMemoryLedger(), nil)
	code, _ := do(t, without, http.MethodGet, "/api/v1/transactions", nil)
	assert.Equal(t, http.StatusNotFound, code)

	with := newServer(t, ownerAddr, chain.NewMemoryLedger(), handler.NewHistoryHandler(fakeHistory{}, fakeHistory{}))

	code, env := do(t, with, http.MethodGet, "/api/v1/transactions?campaign_id=3", nil)
	require.Equal(t, http.StatusOK, code)
	var txs []handler.TransactionResponse
	require.NoError(t, json.Unmarshal(env.Data, &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, int64(3), txs[0].CampaignID)
	assert.Equal(t, "confirmed", txs[0].Status)

	code, env = do(t, with, http.MethodGet, "/api/v1/events", nil)
	require.Equal(t, http.StatusOK, code)
	var events []handler.EventResponse
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Len(t, events, 1)
	assert.Equal(t, int64(-1), events[0].CampaignID)

	code, _ = do(t, with, http.MethodGet, "/api/v1/events?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
