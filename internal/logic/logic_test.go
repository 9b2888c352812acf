package logic

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/PohSayKeong/fundl/internal/chain"
	"github.com/PohSayKeong/fundl/internal/chain/chaintest"
	"github.com/PohSayKeong/fundl/internal/database"
	"github.com/PohSayKeong/fundl/internal/identity/identitytest"
	"github.com/PohSayKeong/fundl/internal/repository"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

var (
	alice = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	bob   = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

type fixture struct {
	backend *chaintest.Backend
	reader  *chain.Reader
	repo    *repository.ProjectRepository
	signer  *identitytest.Signer
	logic   *ProjectLogic
	gate    *MetadataGate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.Open(sqlite.Open(fmt.Sprintf("file:logic_%s?mode=memory&cache=shared", name)))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	backend := chaintest.NewBackend()
	reader := chain.NewReader(backend, chaintest.FundlAddress, time.Second)
	repo := repository.NewProjectRepository(db)
	signer := identitytest.NewSigner()

	return &fixture{
		backend: backend,
		reader:  reader,
		repo:    repo,
		signer:  signer,
		logic:   NewProjectLogic(reader, repo, 4),
		gate:    NewMetadataGate(reader, repo, signer.Verifier()),
	}
}

func (f *fixture) addProject(owner common.Address, goal, raised int64) uint64 {
	return f.backend.AddProject(chaintest.Project{
		Token:  chaintest.TokenAddress,
		Owner:  owner,
		Goal:   big.NewInt(goal),
		Raised: big.NewInt(raised),
		Start:  1700000000,
		End:    1705000000,
	})
}

func (f *fixture) countRecords(t *testing.T) int {
	t.Helper()
	records, err := f.repo.List(context.Background())
	require.NoError(t, err)
	return len(records)
}
