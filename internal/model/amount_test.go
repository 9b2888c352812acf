package model

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wei(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad wei literal " + s)
	}
	return v
}

func TestFormatToken(t *testing.T) {
	tests := []struct {
		name string
		in   *big.Int
		want string
	}{
		{"nil", nil, "0"},
		{"zero", big.NewInt(0), "0"},
		{"one token", wei("1000000000000000000"), "1"},
		{"fraction", wei("1500000000000000000"), "1.5"},
		{"one wei", big.NewInt(1), "0.000000000000000001"},
		{"thousand", wei("1000000000000000000000"), "1000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatToken(tt.in))
		})
	}
}

func TestParseToken(t *testing.T) {
	v, err := ParseToken("2.25")
	require.NoError(t, err)
	assert.Equal(t, "2250000000000000000", v.String())

	v, err = ParseToken("0")
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	_, err = ParseToken("-1")
	assert.Error(t, err)

	_, err = ParseToken("0.0000000000000000001")
	assert.Error(t, err)

	_, err = ParseToken("abc")
	assert.Error(t, err)
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		name        string
		part, whole *big.Int
		want        string
	}{
		{"quarter", wei("250000000000000000000"), wei("1000000000000000000000"), "25.00"},
		{"zero goal", big.NewInt(5), big.NewInt(0), "0.00"},
		{"nothing raised", big.NewInt(0), big.NewInt(10), "0.00"},
		{"over goal capped", big.NewInt(30), big.NewInt(10), "100.00"},
		{"truncates", big.NewInt(1), big.NewInt(3), "33.33"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProgressPercent(tt.part, tt.whole))
		})
	}
}

func TestProgressPercent_BeyondFloatRange(t *testing.T) {
	goal := new(big.Int).Lsh(big.NewInt(1), 200)
	raised := new(big.Int).Rsh(goal, 1)
	raised.Add(raised, big.NewInt(1))
	assert.Equal(t, "50.00", ProgressPercent(raised, goal))
}

func TestProjectMarshalJSON(t *testing.T) {
	p := Project{
		ProjectOnChain: ProjectOnChain{
			ProjectId:      3,
			TokenAddress:   common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
			Owner:          common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
			GoalAmount:     wei("1000000000000000000000"),
			RaisedAmount:   wei("250000000000000000000"),
			OwnerWithdrawn: big.NewInt(0),
			StartTime:      1700000000,
			EndTime:        1705000000,
		},
		Name: UnnamedProject,
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "1000000000000000000000", out["goalAmount"])
	assert.Equal(t, "250", out["raisedAmountDisplay"])
	assert.Equal(t, "25.00", out["progress"])
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", out["owner"])
	assert.Equal(t, UnnamedProject, out["name"])
	assert.Equal(t, float64(3), out["projectId"])
}
