package contracts

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Proxy creation bytecode shipped with the account factories. The predicted
// deployment address is a hash over this code, so the constants must match
// the deployed factories byte for byte.
const (
	// proxyCreationCodeLegacy is used by account versions before 1.3.0.
	proxyCreationCodeLegacy = "0x608060405234801561001057600080fd5b506040516101e63803806101e68339818101604052602081101561003357600080fd5b8101908080519060200190929190505050600073ffffffffffffffffffffffffffffffffffffffff168173ffffffffffffffffffffffffffffffffffffffff16141561010b576040517f08c379a00000000000000000000000000000000000000000000000000000000081526004018080602001828103825260248152602001807f496e76616c6964206d617374657220636f707920616464726573732070726f7681526020017f696465640000000000000000000000000000000000000000000000000000000081525060400191505060405180910390fd5b806000806101000a81548173ffffffffffffffffffffffffffffffffffffffff021916908373ffffffffffffffffffffffffffffffffffffffff1602179055505060ab806101196000396000f3fe608060405273ffffffffffffffffffffffffffffffffffffffff600054167fa619486e0000000000000000000000000000000000000000000000000000000060003514156050578060005260206000f35b3660008037600080366000845af43d6000803e60008136036045573d6000fd5b3d6000f3fea165627a7a72305820d8a00dc4fe6bf675a9d7416fc2d00bb3433362aa8186b750f76c4027269667ff0029"

	// proxyCreationCodeCurrent is used by account versions 1.3.0 and later.
	proxyCreationCodeCurrent = "0x608060405234801561001057600080fd5b506040516101e63803806101e68339818101604052602081101561003357600080fd5b8101908080519060200190929190505050600073ffffffffffffffffffffffffffffffffffffffff168173ffffffffffffffffffffffffffffffffffffffff1614156100ca576040517f08c379a00000000000000000000000000000000000000000000000000000000081526004018080602001828103825260228152602001806101c46022913960400191505060405180910390fd5b806000806101000a81548173ffffffffffffffffffffffffffffffffffffffff021916908373ffffffffffffffffffffffffffffffffffffffff1602179055505060ab806101196000396000f3fe608060405273ffffffffffffffffffffffffffffffffffffffff600054167fa619486e0000000000000000000000000000000000000000000000000000000060003514156050578060005260206000f35b3660008037600080366000845af43d6000803e60008136036045573d6000fd5b3d6000f3fea264697066735822122003d1488ee65e08fa41e58e888a9865554c535f2c77126a82cb4c0f917f31441364736f6c63430007060033496e76616c69642073696e676c65746f6e20616464726573732070726f7669646564"
)

// currentProxyCodeMinor is the minor version (within major 1) at which the
// factories switched to the current proxy bytecode.
const currentProxyCodeMinor = 3

// ProxyCreationCode selects the proxy creation bytecode for an account
// version. This is a fixed two-entry table keyed by major.minor, not a
// general version parser.
func ProxyCreationCode(accountVersion string) ([]byte, error) {
	major, minor, err := ParseMajorMinor(accountVersion)
	if err != nil {
		return nil, err
	}

	if major != 1 {
		return nil, errors.Errorf("unsupported account version %s", accountVersion)
	}

	if minor < currentProxyCodeMinor {
		return common.FromHex(proxyCreationCodeLegacy), nil
	}

	return common.FromHex(proxyCreationCodeCurrent), nil
}

// ParseMajorMinor extracts the major and minor components of a version
// string like "1.3.0". Anything past the minor component is ignored.
func ParseMajorMinor(version string) (int, int, error) {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return 0, 0, errors.Errorf("invalid account version %q", version)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "invalid major version in %q", version)
	}

	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "invalid minor version in %q", version)
	}

	return major, minor, nil
}

// CompareVersions returns -1, 0 or 1 comparing a against b by major.minor.
func CompareVersions(a, b string) (int, error) {
	aMajor, aMinor, err := ParseMajorMinor(a)
	if err != nil {
		return 0, err
	}

	bMajor, bMinor, err := ParseMajorMinor(b)
	if err != nil {
		return 0, err
	}

	switch {
	case aMajor != bMajor:
		if aMajor < bMajor {
			return -1, nil
		}
		return 1, nil
	case aMinor != bMinor:
		if aMinor < bMinor {
			return -1, nil
		}
		return 1, nil
	default:
		return 0, nil
	}
}
