package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PohSayKeong/fundl/internal/chain"
	"github.com/PohSayKeong/fundl/internal/chain/chaintest"
	"github.com/PohSayKeong/fundl/internal/database"
	"github.com/PohSayKeong/fundl/internal/handler"
	"github.com/PohSayKeong/fundl/internal/identity/identitytest"
	"github.com/PohSayKeong/fundl/internal/logic"
	"github.com/PohSayKeong/fundl/internal/model"
	"github.com/PohSayKeong/fundl/internal/repository"
	"github.com/PohSayKeong/fundl/internal/router"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

const tokenHeader = "privy-id-token"

var (
	alice = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	bob   = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

type stubHealth struct{}

func (stubHealth) GetHealthStatus(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{"client_status": "connected", "latest_block": 12}
}

type server struct {
	engine  *gin.Engine
	backend *chaintest.Backend
	repo    *repository.ProjectRepository
	signer  *identitytest.Signer
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.Open(sqlite.Open(fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", name)))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	backend := chaintest.NewBackend()
	reader := chain.NewReader(backend, chaintest.FundlAddress, time.Second)
	repo := repository.NewProjectRepository(db)
	signer := identitytest.NewSigner()

	projects := handler.NewProjectHandler(
		logic.NewProjectLogic(reader, repo, 4),
		logic.NewMetadataGate(reader, repo, signer.Verifier()),
		tokenHeader,
	)
	return &server{
		engine:  router.Setup(projects, handler.NewHealthHandler(stubHealth{}), tokenHeader),
		backend: backend,
		repo:    repo,
		signer:  signer,
	}
}

func (s *server) addProject(owner common.Address, goal, raised string) uint64 {
	g, _ := new(big.Int).SetString(goal, 10)
	r, _ := new(big.Int).SetString(raised, 10)
	return s.backend.AddProject(chaintest.Project{
		Token:  chaintest.TokenAddress,
		Owner:  owner,
		Goal:   g,
		Raised: r,
		Start:  1700000000,
		End:    1705000000,
	})
}

func (s *server) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(tokenHeader, token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	assert.Equal(t, status, w.Code, w.Body.String())
	assert.Equal(t, message, decode(t, w)["error"])
}

func TestGetProject_InvalidId(t *testing.T) {
	s := newServer(t)

	for _, id := range []string{"abc", "-1", "1.5"} {
		w := s.do(http.MethodGet, "/projects/"+id, nil, "")
		assertError(t, w, http.StatusBadRequest, "Invalid project id")
	}
	assert.Zero(t, s.backend.Calls("projectIdCounter"), "invalid ids never reach the chain")
}

func TestGetProject_BeyondCounter(t *testing.T) {
	s := newServer(t)
	s.addProject(alice, "100", "0")

	w := s.do(http.MethodGet, "/projects/5", nil, "")
	assertError(t, w, http.StatusNotFound, "Project not found")

	// 2^64 仍是合法整数，只是不可能存在
	w = s.do(http.MethodGet, "/projects/18446744073709551616", nil, "")
	assertError(t, w, http.StatusNotFound, "Project not found")

	w = s.do(http.MethodGet, "/projects/18446744073709551616/refund", nil, "")
	assertError(t, w, http.StatusNotFound, "Project not found")
}

func TestGetProject_Reconciled(t *testing.T) {
	s := newServer(t)
	id := s.addProject(alice, "1000000000000000000000", "250000000000000000000")
	s.backend.SetSymbol(chaintest.TokenAddress, "MTK")

	w := s.do(http.MethodGet, fmt.Sprintf("/projects/%d", id), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "MTK", body["tokenSymbol"])
	project := body["project"].(map[string]interface{})
	assert.Equal(t, "Unnamed Project", project["name"])
	assert.Equal(t, "1000000000000000000000", project["goalAmount"])
	assert.Equal(t, "250000000000000000000", project["raisedAmount"])
	assert.Equal(t, "250", project["raisedAmountDisplay"])
	assert.Equal(t, "25.00", project["progress"])
	assert.Equal(t, alice.Hex(), project["owner"])
}

func TestGetProject_SymbolFailureIsSilent(t *testing.T) {
	s := newServer(t)
	s.addProject(alice, "100", "0")

	w := s.do(http.MethodGet, "/projects/0", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Contains(t, body, "tokenSymbol")
	assert.Nil(t, body["tokenSymbol"])
}

func TestGetProject_UpstreamFailure(t *testing.T) {
	s := newServer(t)
	s.addProject(alice, "100", "0")
	s.backend.Fail("projectIdCounter", errors.New("dial tcp 10.0.0.1:8545: connection refused"))

	w := s.do(http.MethodGet, "/projects/0", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.1", "upstream cause stays in the log")
}

func TestGetProjects(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/projects", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"projects":[]}`, w.Body.String())

	s.addProject(alice, "100", "10")
	s.addProject(bob, "100", "20")
	require.NoError(t, s.repo.Create(context.Background(), &model.ProjectModel{ProjectId: 1, Name: "Bob's", Description: "d", ImageURL: "u"}))

	w = s.do(http.MethodGet, "/projects", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	projects := decode(t, w)["projects"].([]interface{})
	require.Len(t, projects, 2)
	assert.Equal(t, "Unnamed Project", projects[0].(map[string]interface{})["name"])
	assert.Equal(t, "Bob's", projects[1].(map[string]interface{})["name"])
}

func TestGetProjects_FailedReadsAreNull(t *testing.T) {
	s := newServer(t)
	s.addProject(alice, "100", "10")
	s.backend.Fail("projects", errors.New("timeout"))

	w := s.do(http.MethodGet, "/projects", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"projects":[null]}`, w.Body.String())

	s.backend.Fail("projectIdCounter", errors.New("timeout"))
	w = s.do(http.MethodGet, "/projects", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUpdateProject(t *testing.T) {
	s := newServer(t)
	id := s.addProject(alice, "100", "0")
	require.NoError(t, s.repo.Create(context.Background(), &model.ProjectModel{ProjectId: id, Name: "Old", Description: "d", ImageURL: "u"}))
	token := s.signer.Token("did:privy:alice", alice.Hex())
	path := fmt.Sprintf("/projects/%d", id)

	w := s.do(http.MethodPost, path, map[string]string{"name": "", "description": "d", "imageUrl": "u"}, token)
	assertError(t, w, http.StatusBadRequest, "Missing required fields")

	w = s.do(http.MethodPost, path, nil, token)
	assertError(t, w, http.StatusBadRequest, "Missing required fields")

	// 未认证请求先于请求体校验被拒绝
	w = s.do(http.MethodPost, path, nil, "")
	assertError(t, w, http.StatusUnauthorized, "Missing identity token")

	w = s.do(http.MethodPost, path, map[string]string{"name": "", "description": "d", "imageUrl": "u"}, "")
	assertError(t, w, http.StatusUnauthorized, "Missing identity token")

	w = s.do(http.MethodPost, "/projects/x", map[string]string{"name": "n", "description": "d", "imageUrl": "u"}, token)
	assertError(t, w, http.StatusBadRequest, "Invalid project id")

	update := map[string]string{"name": "New", "description": "d2", "imageUrl": "u2"}

	w = s.do(http.MethodPost, path, update, "")
	assertError(t, w, http.StatusUnauthorized, "Missing identity token")

	w = s.do(http.MethodPost, path, update, "x.y.z")
	assertError(t, w, http.StatusUnauthorized, "Invalid identity token")

	w = s.do(http.MethodPost, path, update, s.signer.Token("did:privy:bob", bob.Hex()))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/projects/9", update, token)
	assertError(t, w, http.StatusNotFound, "Project not found")

	w = s.do(http.MethodPost, path, update, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	project := decode(t, w)["project"].(map[string]interface{})
	assert.Equal(t, "New", project["name"])
	assert.Equal(t, "u2", project["imageUrl"])
}

func TestUpdateProject_WithoutMetadata(t *testing.T) {
	s := newServer(t)
	id := s.addProject(alice, "100", "0")

	update := map[string]string{"name": "New", "description": "d", "imageUrl": "u"}
	w := s.do(http.MethodPost, fmt.Sprintf("/projects/%d", id), update, s.signer.Token("did:privy:alice", alice.Hex()))
	assertError(t, w, http.StatusNotFound, "Project metadata not found")
}

func TestCreateProject(t *testing.T) {
	s := newServer(t)
	id := s.addProject(alice, "100", "0")
	tx := common.HexToHash("0x5e1f")
	s.backend.AddCreateReceipt(tx, id, alice)

	body := map[string]string{"name": "Aetheria", "description": "game", "image": "https://example.com/a.png", "txHash": tx.Hex()}

	w := s.do(http.MethodPost, "/projects", body, "")
	assertError(t, w, http.StatusUnauthorized, "Missing identity token")

	w = s.do(http.MethodPost, "/projects", nil, "")
	assertError(t, w, http.StatusUnauthorized, "Missing identity token")

	w = s.do(http.MethodPost, "/projects", map[string]string{"name": "n"}, "x.y.z")
	assertError(t, w, http.StatusUnauthorized, "Invalid identity token")

	w = s.do(http.MethodPost, "/projects", body, s.signer.Token("did:privy:bob", bob.Hex()))
	assert.Equal(t, http.StatusForbidden, w.Code)

	token := s.signer.Token("did:privy:alice", strings.ToLower(alice.Hex()))
	w = s.do(http.MethodPost, "/projects", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	project := decode(t, w)["project"].(map[string]interface{})
	assert.Equal(t, "Aetheria", project["name"])
	assert.Equal(t, float64(id), project["projectId"])

	w = s.do(http.MethodPost, "/projects", body, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	noEvent := map[string]string{"name": "n", "description": "d", "image": "i", "txHash": common.HexToHash("0x77").Hex()}
	w = s.do(http.MethodPost, "/projects", noEvent, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/projects", map[string]string{"name": "n"}, token)
	assertError(t, w, http.StatusBadRequest, "Missing required fields")
}

func TestRefundAndAvailable(t *testing.T) {
	s := newServer(t)
	id := s.addProject(alice, "100", "80")
	s.backend.SetRefundTotal(id, big.NewInt(40))
	s.backend.SetFunding(id, bob, big.NewInt(40), true)
	s.backend.SetAvailable(id, big.NewInt(20))

	w := s.do(http.MethodGet, fmt.Sprintf("/projects/%d/refund?address=%s", id, bob.Hex()), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "40", body["totalRefundRequestedAmount"])
	assert.Equal(t, "50.00", body["refundRequestedPercent"])
	assert.Equal(t, true, body["refundRequestedByUser"])
	assert.Equal(t, "40", body["userFundedAmount"])

	w = s.do(http.MethodGet, fmt.Sprintf("/projects/%d/refund", id), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decode(t, w), "userFundedAmount")

	w = s.do(http.MethodGet, fmt.Sprintf("/projects/%d/refund?address=nope", id), nil, "")
	assertError(t, w, http.StatusBadRequest, "Invalid address")

	w = s.do(http.MethodGet, fmt.Sprintf("/projects/%d/available", id), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "20", decode(t, w)["availableToOwner"])
}

func TestHealthAndRequestId(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "connected", body["chain"].(map[string]interface{})["client_status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}
