package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// FundlABI 众筹合约 ABI（函数与事件部分）
const FundlABI = `[
	{"type":"function","name":"availableToOwner","stateMutability":"view",
	 "inputs":[{"name":"_projectId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"collectFunding","stateMutability":"nonpayable",
	 "inputs":[{"name":"_projectId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"createProject","stateMutability":"nonpayable",
	 "inputs":[{"name":"_tokenAddress","type":"address"},{"name":"_goalAmount","type":"uint256"},{"name":"_endTime","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"createRefundRequest","stateMutability":"nonpayable",
	 "inputs":[{"name":"_projectId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"fundingByUsersByProject","stateMutability":"view",
	 "inputs":[{"name":"","type":"uint256"},{"name":"","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"fundl","stateMutability":"nonpayable",
	 "inputs":[{"name":"_projectId","type":"uint256"},{"name":"_amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"projectIdCounter","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"projects","stateMutability":"view",
	 "inputs":[{"name":"","type":"uint256"}],
	 "outputs":[
		{"name":"tokenAddress","type":"address"},
		{"name":"owner","type":"address"},
		{"name":"goalAmount","type":"uint256"},
		{"name":"raisedAmount","type":"uint256"},
		{"name":"ownerWithdrawn","type":"uint256"},
		{"name":"startTime","type":"uint256"},
		{"name":"endTime","type":"uint256"}]},
	{"type":"function","name":"refund","stateMutability":"nonpayable",
	 "inputs":[{"name":"_projectId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"refundRequestByUsersByProject","stateMutability":"view",
	 "inputs":[{"name":"","type":"uint256"},{"name":"","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"totalRefundRequestedAmount","stateMutability":"view",
	 "inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"event","name":"Collected","anonymous":false,"inputs":[
		{"name":"projectId","type":"uint256","indexed":true},
		{"name":"owner","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"Funded","anonymous":false,"inputs":[
		{"name":"projectId","type":"uint256","indexed":true},
		{"name":"funder","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"ProjectCreated","anonymous":false,"inputs":[
		{"name":"projectId","type":"uint256","indexed":true},
		{"name":"owner","type":"address","indexed":true}]},
	{"type":"event","name":"ProjectHalted","anonymous":false,"inputs":[
		{"name":"projectId","type":"uint256","indexed":true}]},
	{"type":"event","name":"RefundRequested","anonymous":false,"inputs":[
		{"name":"projectId","type":"uint256","indexed":true},
		{"name":"funder","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"Refunded","anonymous":false,"inputs":[
		{"name":"projectId","type":"uint256","indexed":true},
		{"name":"funder","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}]}
]`

// TokenABI 项目接受的 ERC20 代币所需的最小 ABI
const TokenABI = `[
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable",
	 "inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

var (
	fundlABI = mustParseABI(FundlABI)
	tokenABI = mustParseABI(TokenABI)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("invalid embedded ABI: " + err.Error())
	}
	return parsed
}
