package framework

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var ErrArgCount = errors.New("argument count mismatch")

// ConstructorArgs converts opaque string arguments into the Go values the
// ABI encoder expects for the contract constructor.
func ConstructorArgs(contractAbi *abi.ABI, args []string) ([]interface{}, error) {
	inputs := contractAbi.Constructor.Inputs
	if len(args) != len(inputs) {
		return nil, fmt.Errorf("%w: got %d for %d", ErrArgCount, len(args), len(inputs))
	}

	values := make([]interface{}, len(args))
	for i, arg := range args {
		v, err := coerceArg(inputs[i].Type, arg)
		if err != nil {
			name := inputs[i].Name
			if name == "" {
				name = strconv.Itoa(i)
			}
			return nil, fmt.Errorf("invalid constructor argument %s (%s): %w", name, inputs[i].Type.String(), err)
		}
		values[i] = v
	}
	return values, nil
}

// PackConstructorArgs returns the ABI encoding appended to the creation code.
func PackConstructorArgs(contractAbi *abi.ABI, args []string) ([]byte, error) {
	values, err := ConstructorArgs(contractAbi, args)
	if err != nil {
		return nil, err
	}
	return contractAbi.Pack("", values...)
}

func coerceArg(typ abi.Type, arg string) (interface{}, error) {
	arg = strings.TrimSpace(arg)

	switch typ.T {
	case abi.AddressTy:
		if !common.IsHexAddress(arg) {
			return nil, fmt.Errorf("not an address: %q", arg)
		}
		return common.HexToAddress(arg), nil

	case abi.StringTy:
		return arg, nil

	case abi.BoolTy:
		return strconv.ParseBool(arg)

	case abi.BytesTy:
		return hexutil.Decode(arg)

	case abi.FixedBytesTy:
		b, err := hexutil.Decode(arg)
		if err != nil {
			return nil, err
		}
		if len(b) != typ.Size {
			return nil, fmt.Errorf("want %d bytes, got %d", typ.Size, len(b))
		}
		arr := reflect.New(typ.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil

	case abi.IntTy, abi.UintTy:
		n, ok := new(big.Int).SetString(arg, 0)
		if !ok {
			return nil, fmt.Errorf("not an integer: %q", arg)
		}
		if typ.T == abi.UintTy && n.Sign() < 0 {
			return nil, fmt.Errorf("negative value for unsigned type: %s", arg)
		}
		if overflows(typ, n) {
			return nil, fmt.Errorf("value %s overflows %s", arg, typ.String())
		}
		goType := typ.GetType()
		if goType == reflect.TypeOf(&big.Int{}) {
			return n, nil
		}
		if typ.T == abi.UintTy {
			return reflect.ValueOf(n.Uint64()).Convert(goType).Interface(), nil
		}
		return reflect.ValueOf(n.Int64()).Convert(goType).Interface(), nil
	}

	return nil, fmt.Errorf("unsupported constructor argument type %s", typ.String())
}

func overflows(typ abi.Type, n *big.Int) bool {
	if typ.T == abi.UintTy {
		return n.BitLen() > typ.Size
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(typ.Size-1))
	return n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0
}
