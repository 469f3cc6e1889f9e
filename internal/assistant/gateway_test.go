package assistant

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"MedGuard/internal/apperr"
	"MedGuard/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeProvider 按顺序返回预设状态码与响应体，超出后重复最后一个
type fakeProvider struct {
	statuses []int
	bodies   []string
	hits     int32
	lastBody atomic.Value
	lastAuth atomic.Value
}

func (p *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	i := int(atomic.AddInt32(&p.hits, 1)) - 1
	if i >= len(p.statuses) {
		i = len(p.statuses) - 1
	}
	raw, _ := io.ReadAll(r.Body)
	p.lastBody.Store(string(raw))
	p.lastAuth.Store(r.Header.Get("Authorization"))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(p.statuses[i])
	_, _ = io.WriteString(w, p.bodies[i])
}

const okBody = `{"choices":[{"message":{"role":"assistant","content":"分析完成"}}]}`

func newTestGateway(t *testing.T, url, model string) (*Gateway, *[]time.Duration) {
	t.Helper()
	g := NewGateway(config.AIConfig{
		APIURL:         url,
		APIKey:         "sk-test",
		Model:          model,
		Timeout:        5 * time.Second,
		UnstableModels: []string{"-exp", "-Exp"},
	}, quietLogger())
	waits := &[]time.Duration{}
	g.sleep = func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
	return g, waits
}

func serve(t *testing.T, p *fakeProvider) string {
	t.Helper()
	srv := httptest.NewServer(p)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestConverse_NoKeyReturnsMock(t *testing.T) {
	p := &fakeProvider{statuses: []int{200}, bodies: []string{okBody}}
	g := NewGateway(config.AIConfig{APIURL: serve(t, p), Model: "m"}, quietLogger())

	reply, err := g.Converse(context.Background(), "这家医院有欺诈风险吗", Context{UserRole: "admin"})
	require.NoError(t, err)
	assert.Equal(t, ModeMock, reply.Mode)
	assert.Equal(t, MockAnswer("这家医院有欺诈风险吗", false, ""), reply.Content)
	assert.EqualValues(t, 0, atomic.LoadInt32(&p.hits))
	assert.Equal(t, "mock", g.Health().Mode)
}

func TestConverse_Success(t *testing.T) {
	p := &fakeProvider{statuses: []int{200}, bodies: []string{okBody}}
	g, waits := newTestGateway(t, serve(t, p), "glm-4")

	reply, err := g.Converse(context.Background(), "推荐医院", Context{UserRole: "user", Hospitals: []interface{}{"北京协和医院"}})
	require.NoError(t, err)
	assert.Equal(t, ModeLive, reply.Mode)
	assert.Equal(t, "分析完成", reply.Content)
	assert.Equal(t, PersonaTransferAdvisor, reply.Persona)
	assert.Empty(t, *waits)

	body := p.lastBody.Load().(string)
	assert.Equal(t, "glm-4", gjson.Get(body, "model").String())
	assert.Equal(t, "system", gjson.Get(body, "messages.0.role").String())
	assert.Contains(t, gjson.Get(body, "messages.1.content").String(), "可选医院列表")
	assert.Equal(t, 2000, int(gjson.Get(body, "max_tokens").Int()))
	assert.Equal(t, "Bearer sk-test", p.lastAuth.Load().(string))
	assert.Equal(t, "production", g.Health().Mode)
}

func TestConverse_InvalidKey(t *testing.T) {
	p := &fakeProvider{statuses: []int{401}, bodies: []string{`{"error":{"message":"bad key"}}`}}
	g, _ := newTestGateway(t, serve(t, p), "glm-4")

	_, err := g.Converse(context.Background(), "hi", Context{})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	assert.Contains(t, err.Error(), msgInvalidKey)
	assert.EqualValues(t, 1, atomic.LoadInt32(&p.hits))
}

func TestConverse_ServerErrorRetriesThenFallback(t *testing.T) {
	p := &fakeProvider{statuses: []int{500}, bodies: []string{`{}`}}
	g, waits := newTestGateway(t, serve(t, p), "glm-4")

	reply, err := g.Converse(context.Background(), "风险分析", Context{})
	require.NoError(t, err)
	assert.Equal(t, ModeFallback, reply.Mode)
	assert.Equal(t, MockAnswer("风险分析", true, ""), reply.Content)
	assert.EqualValues(t, 3, atomic.LoadInt32(&p.hits))
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *waits)
}

func TestConverse_RecoversAfterTransientFailure(t *testing.T) {
	p := &fakeProvider{statuses: []int{502, 200}, bodies: []string{`bad gateway`, okBody}}
	g, waits := newTestGateway(t, serve(t, p), "glm-4")

	reply, err := g.Converse(context.Background(), "hi", Context{})
	require.NoError(t, err)
	assert.Equal(t, ModeLive, reply.Mode)
	assert.Equal(t, []time.Duration{2 * time.Second}, *waits)
}

func TestConverse_RateLimitedTwice(t *testing.T) {
	p := &fakeProvider{statuses: []int{429}, bodies: []string{`{}`}}
	g, waits := newTestGateway(t, serve(t, p), "glm-4")

	_, err := g.Converse(context.Background(), "hi", Context{})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	assert.Contains(t, err.Error(), msgRateLimited)
	assert.EqualValues(t, 2, atomic.LoadInt32(&p.hits))
	assert.Equal(t, []time.Duration{5 * time.Second}, *waits)
}

func TestConverse_BadRequest(t *testing.T) {
	body := `{"error":{"message":"model not found"}}`

	p := &fakeProvider{statuses: []int{400}, bodies: []string{body}}
	g, _ := newTestGateway(t, serve(t, p), "gemini-2.0-flash-Exp")
	reply, err := g.Converse(context.Background(), "hi", Context{})
	require.NoError(t, err)
	assert.Equal(t, ModeFallback, reply.Mode)
	assert.Contains(t, reply.Content, "gemini-2.0-flash-Exp")

	p2 := &fakeProvider{statuses: []int{400}, bodies: []string{body}}
	g2, _ := newTestGateway(t, serve(t, p2), "glm-4")
	_, err = g2.Converse(context.Background(), "hi", Context{})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	assert.Contains(t, err.Error(), "API请求参数错误: model not found")
	assert.EqualValues(t, 1, atomic.LoadInt32(&p2.hits))
}

func TestConverse_MalformedSuccessFallsBack(t *testing.T) {
	p := &fakeProvider{statuses: []int{200}, bodies: []string{`{"choices":[]}`}}
	g, waits := newTestGateway(t, serve(t, p), "glm-4")

	reply, err := g.Converse(context.Background(), "hi", Context{})
	require.NoError(t, err)
	assert.Equal(t, ModeFallback, reply.Mode)
	assert.Len(t, *waits, 2)
}

func TestConverse_NetworkFailureAddsReason(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g, _ := newTestGateway(t, url, "glm-4")
	reply, err := g.Converse(context.Background(), "hi", Context{})
	require.NoError(t, err)
	assert.Equal(t, ModeFallback, reply.Mode)
	assert.Contains(t, reply.Content, "网络连接失败")
}

func TestConverse_CancelledWhileWaiting(t *testing.T) {
	p := &fakeProvider{statuses: []int{503}, bodies: []string{`{}`}}
	g, _ := newTestGateway(t, serve(t, p), "glm-4")
	g.sleep = func(context.Context, time.Duration) error { return context.Canceled }

	_, err := g.Converse(context.Background(), "hi", Context{})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	assert.True(t, strings.HasPrefix(err.Error(), "请求已取消"))
}

type recordingObserver struct {
	persona, mode string
	calls         int
}

func (o *recordingObserver) ObserveReply(persona, mode string, _ time.Duration) {
	o.persona, o.mode = persona, mode
	o.calls++
}

func TestConverse_Observer(t *testing.T) {
	p := &fakeProvider{statuses: []int{200}, bodies: []string{okBody}}
	g, _ := newTestGateway(t, serve(t, p), "glm-4")
	obs := &recordingObserver{}
	g.WithObserver(obs)

	_, err := g.Converse(context.Background(), "hi", Context{UserRole: "admin"})
	require.NoError(t, err)
	assert.Equal(t, 1, obs.calls)
	assert.Equal(t, string(PersonaFraudAnalyst), obs.persona)
	assert.Equal(t, string(ModeLive), obs.mode)
}

func TestBuildPrompt_HospitalsOnlyForAdvisor(t *testing.T) {
	c := Context{PatientData: map[string]interface{}{"age": 60}, Hospitals: []interface{}{"A"}}

	advisor, err := BuildPrompt("q", c, PersonaTransferAdvisor)
	require.NoError(t, err)
	assert.Contains(t, advisor, "相关数据")
	assert.Contains(t, advisor, "可选医院列表")

	analyst, err := BuildPrompt("q", c, PersonaFraudAnalyst)
	require.NoError(t, err)
	assert.Contains(t, analyst, "相关数据")
	assert.NotContains(t, analyst, "可选医院列表")
	assert.NotContains(t, analyst, "风险事件")
}
