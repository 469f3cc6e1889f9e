package service

import (
	"context"
	"testing"
	"time"

	"MedGuard/internal/apperr"
	"MedGuard/internal/assistant"
	"MedGuard/internal/model"
	"MedGuard/internal/repository"
	"MedGuard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	lastRole string
	calls    int
}

func (g *stubGateway) Converse(_ context.Context, message string, c assistant.Context) (*assistant.Reply, error) {
	g.calls++
	g.lastRole = c.UserRole
	return &assistant.Reply{Content: "答复:" + message, Mode: assistant.ModeLive, Persona: assistant.PersonaFor(c.UserRole)}, nil
}

func (g *stubGateway) Analyze(_ context.Context, _ interface{}) (*assistant.Reply, error) {
	g.calls++
	return &assistant.Reply{Content: "分析结果", Mode: assistant.ModeLive, Persona: assistant.PersonaFraudAnalyst}, nil
}

func (g *stubGateway) Health() assistant.Health { return assistant.Health{Status: "ok", Mode: "mock"} }

func TestAssistantService_ChatRecordsConversation(t *testing.T) {
	st := testutil.NewStore(t)
	gw := &stubGateway{}
	svc := NewAssistantService(gw, repository.NewConversationRepository(st), testutil.Logger())
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 8, 0, 0, 0, time.FixedZone("CST", 8*3600)) }
	ctx := context.Background()

	_, err := svc.Chat(ctx, nil, ChatRequest{Message: " \n "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Zero(t, gw.calls)

	// 登录用户的角色覆盖请求中声明的角色
	caller := &Caller{ID: 7, Role: model.RoleUser}
	res, err := svc.Chat(ctx, caller, ChatRequest{Message: "推荐医院", Context: assistant.Context{UserRole: model.RoleAdmin}})
	require.NoError(t, err)
	assert.Equal(t, "答复:推荐医院", res.Response)
	assert.Equal(t, "2025-03-01T00:00:00.000Z", res.Timestamp)
	assert.Equal(t, model.RoleUser, gw.lastRole)

	uid := uint64(7)
	history, err := svc.History(ctx, &uid, repository.Page{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, history.Total)
	assert.Equal(t, string(assistant.PersonaTransferAdvisor), history.List[0].Persona)
	assert.Equal(t, "推荐医院", history.List[0].Message)
}

func TestAssistantService_AnalyzeRequiresData(t *testing.T) {
	gw := &stubGateway{}
	svc := NewAssistantService(gw, repository.NewConversationRepository(testutil.NewStore(t)), testutil.Logger())
	ctx := context.Background()

	for _, data := range []interface{}{nil, "", map[string]interface{}{}, []interface{}{}} {
		_, err := svc.Analyze(ctx, nil, data)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "%#v", data)
	}
	assert.Zero(t, gw.calls)

	res, err := svc.Analyze(ctx, nil, map[string]interface{}{"hospital": "北京协和医院", "amount": 12500})
	require.NoError(t, err)
	assert.Equal(t, "分析结果", res.Analysis)
}
