package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFundl = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")

func TestCalls_Selectors(t *testing.T) {
	calls := NewCalls(testFundl)
	token := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

	create, err := calls.CreateProject(token, big.NewInt(1000), 1800000000)
	require.NoError(t, err)
	assert.Equal(t, testFundl, create.To)
	assert.Equal(t, fundlABI.Methods["createProject"].ID, create.Data[:4])
	assert.Len(t, create.Data, 4+3*32)

	args, err := fundlABI.Methods["createProject"].Inputs.Unpack(create.Data[4:])
	require.NoError(t, err)
	assert.Equal(t, token, args[0])
	assert.Equal(t, "1000", args[1].(*big.Int).String())
	assert.Equal(t, "1800000000", args[2].(*big.Int).String())

	approve, err := calls.Approve(token, big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, token, approve.To)
	args, err = tokenABI.Methods["approve"].Inputs.Unpack(approve.Data[4:])
	require.NoError(t, err)
	assert.Equal(t, testFundl, args[0], "spender is the fundl contract")

	for method, build := range map[string]func(uint64) (*Call, error){
		"collectFunding":      calls.Collect,
		"createRefundRequest": calls.RequestRefund,
		"refund":              calls.Refund,
	} {
		call, err := build(2)
		require.NoError(t, err, method)
		assert.Equal(t, fundlABI.Methods[method].ID, call.Data[:4], method)
	}
}

func TestCalls_RejectsNonPositiveAmounts(t *testing.T) {
	calls := NewCalls(testFundl)

	_, err := calls.Fund(1, big.NewInt(0))
	assert.Error(t, err)
	_, err = calls.CreateProject(common.Address{}, nil, 0)
	assert.Error(t, err)
	_, err = calls.Approve(common.Address{}, big.NewInt(-1))
	assert.Error(t, err)

	fund, err := calls.Fund(1, big.NewInt(10))
	require.NoError(t, err)
	assert.Equal(t, fundlABI.Methods["fundl"].ID, fund.Data[:4])
}
