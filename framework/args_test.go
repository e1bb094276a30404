package framework

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constructorAbi(t *testing.T, types ...string) *abi.ABI {
	t.Helper()
	inputs := make([]string, len(types))
	for i, typ := range types {
		inputs[i] = `{"name":"","type":"` + typ + `"}`
	}
	parsed, err := abi.JSON(strings.NewReader(`[{"type":"constructor","inputs":[` + strings.Join(inputs, ",") + `]}]`))
	require.NoError(t, err)
	return &parsed
}

func TestConstructorArgsCoercion(t *testing.T) {
	tests := []struct {
		typ  string
		arg  string
		want interface{}
	}{
		{typ: "address", arg: "0xB1cB92619902DA57b8f0f910AE553222DE9ACc56", want: common.HexToAddress("0xB1cB92619902DA57b8f0f910AE553222DE9ACc56")},
		{typ: "address", arg: " 0xb1cb92619902da57b8f0f910ae553222de9acc56 ", want: common.HexToAddress("0xB1cB92619902DA57b8f0f910AE553222DE9ACc56")},
		{typ: "bool", arg: "true", want: true},
		{typ: "string", arg: "wrapped", want: "wrapped"},
		{typ: "bytes", arg: "0x0102", want: []byte{1, 2}},
		{typ: "bytes4", arg: "0x01020304", want: [4]byte{1, 2, 3, 4}},
		{typ: "uint8", arg: "255", want: uint8(255)},
		{typ: "int8", arg: "-128", want: int8(-128)},
		{typ: "uint64", arg: "0x10", want: uint64(16)},
		{typ: "int24", arg: "-5", want: big.NewInt(-5)},
		{typ: "uint256", arg: "1000000000000000000000", want: new(big.Int).Mul(big.NewInt(1e18), big.NewInt(1000))},
	}

	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.arg, func(t *testing.T) {
			got, err := ConstructorArgs(constructorAbi(t, tt.typ), []string{tt.arg})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestConstructorArgsRejects(t *testing.T) {
	tests := []struct {
		typ string
		arg string
	}{
		{typ: "address", arg: "0x1234"},
		{typ: "address", arg: "not-an-address"},
		{typ: "bool", arg: "maybe"},
		{typ: "bytes", arg: "0102"},
		{typ: "bytes4", arg: "0x0102"},
		{typ: "uint8", arg: "256"},
		{typ: "uint256", arg: "-1"},
		{typ: "int8", arg: "128"},
		{typ: "int8", arg: "-129"},
		{typ: "uint256", arg: "ten"},
		{typ: "address[]", arg: "0xB1cB92619902DA57b8f0f910AE553222DE9ACc56"},
	}

	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.arg, func(t *testing.T) {
			_, err := ConstructorArgs(constructorAbi(t, tt.typ), []string{tt.arg})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid constructor argument 0")
		})
	}
}

func TestConstructorArgsCount(t *testing.T) {
	parsed := constructorAbi(t, "address", "address")

	_, err := ConstructorArgs(parsed, []string{"0xB1cB92619902DA57b8f0f910AE553222DE9ACc56"})
	assert.ErrorIs(t, err, ErrArgCount)
	assert.EqualError(t, err, "argument count mismatch: got 1 for 2")

	_, err = ConstructorArgs(parsed, nil)
	assert.ErrorIs(t, err, ErrArgCount)
}

func TestPackConstructorArgsKeepsOrder(t *testing.T) {
	artifact, err := ReadArtifact(testArtifacts, "StWSX")
	require.NoError(t, err)

	args := []string{
		"0xB1cB92619902DA57b8f0f910AE553222DE9ACc56",
		"0x3e64F88C6C7a1310236B242180c0Ba1409d10F4d",
		"0x2D4e10Ee64CCF407C7F765B363348f7F62D2E06e",
		"0xAEb6Cf65c48064aF0FA8554199CB8eAd499D92A5",
		"0x0dD2c0b61C8a8FF8Fbf84a82a188B81247d5AdFe",
	}
	packed, err := PackConstructorArgs(artifact.Abi, args)
	require.NoError(t, err)
	require.Len(t, packed, 32*len(args))

	for i, arg := range args {
		word := packed[i*32 : (i+1)*32]
		assert.Equal(t, common.HexToAddress(arg), common.BytesToAddress(word), "argument %d", i)
	}
}
