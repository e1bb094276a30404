package framework

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/samber/lo"
)

var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrEmptyBytecode    = errors.New("artifact has no bytecode")
)

// Artifact is a compiled contract: its ABI and creation bytecode.
type Artifact struct {
	Path string
	Abi  *abi.ABI
	Code []byte
}

// artifactFile covers the Remix, Foundry and Hardhat output layouts.
// Remix nests the compiler output under "data".
type artifactFile struct {
	Abi      json.RawMessage `json:"abi"`
	Bytecode json.RawMessage `json:"bytecode"`
	Data     *struct {
		Bytecode json.RawMessage `json:"bytecode"`
	} `json:"data"`
}

// ReadArtifact resolves a contract name (or a path relative to dir, like
// "mempool.sol/Mempool.json") and loads it.
func ReadArtifact(dir, name string) (*Artifact, error) {
	path, err := resolveArtifact(dir, name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	artifact, err := parseArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("invalid artifact %s: %w", path, err)
	}
	artifact.Path = path
	return artifact, nil
}

func artifactCandidates(dir, name string) []string {
	base := strings.TrimSuffix(name, ".json")
	return lo.Uniq([]string{
		filepath.Join(dir, base+".json"),
		filepath.Join(dir, base+".sol", filepath.Base(base)+".json"),
		filepath.Join(dir, name),
	})
}

func resolveArtifact(dir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty contract name", ErrArtifactNotFound)
	}
	candidates := artifactCandidates(dir, name)
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %s (looked in %s)", ErrArtifactNotFound, name, strings.Join(candidates, ", "))
}

func parseArtifact(data []byte) (*Artifact, error) {
	var file artifactFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Abi) == 0 {
		return nil, errors.New("missing abi")
	}

	contractAbi, err := abi.JSON(strings.NewReader(string(file.Abi)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse abi: %w", err)
	}

	raw := file.Bytecode
	if len(raw) == 0 && file.Data != nil {
		raw = file.Data.Bytecode
	}
	code, err := decodeBytecode(raw)
	if err != nil {
		return nil, err
	}
	if len(code) == 0 {
		return nil, ErrEmptyBytecode
	}

	return &Artifact{Abi: &contractAbi, Code: code}, nil
}

// decodeBytecode accepts either a hex string or an {"object": "<hex>"} value.
func decodeBytecode(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var hexCode string
	if err := json.Unmarshal(raw, &hexCode); err != nil {
		var obj struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("unrecognized bytecode format: %w", err)
		}
		hexCode = obj.Object
	}

	if hexCode == "" {
		return nil, nil
	}
	if !strings.HasPrefix(hexCode, "0x") {
		hexCode = "0x" + hexCode
	}
	code, err := hexutil.Decode(hexCode)
	if err != nil {
		return nil, fmt.Errorf("failed to decode bytecode: %w", err)
	}
	return code, nil
}
