// Package gateway talks to the Hyperledger Fabric network: transaction
// submission and evaluation on behalf of an organization, and CA enrollment
// of organization identities into the file-system wallet.
package gateway

import (
	"context"
	"path/filepath"
	"time"

	fabconfig "github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-sdk-go/pkg/gateway"

	"github.com/kehm/eckochain-client/internal/chaincode"
	"github.com/kehm/eckochain-client/internal/config"
	"github.com/kehm/eckochain-client/internal/domain"
)

// FabricLedger submits and evaluates chaincode transactions. Each call
// re-reads the organization's connection profile and re-opens the wallet:
// calls are infrequent relative to connection setup cost in this workload,
// so no pooling is done.
type FabricLedger struct {
	channel    string
	walletPath string
	configPath string
	timeout    time.Duration
}

func NewFabricLedger(conf config.Fabric) *FabricLedger {
	return &FabricLedger{
		channel:    conf.Channel,
		walletPath: conf.WalletPath,
		configPath: conf.ConfigPath,
		timeout:    conf.Timeout,
	}
}

// Invoke submits a state-changing transaction as the organization's client
// identity. The connection is closed on every exit path.
func (l *FabricLedger) Invoke(ctx context.Context, org domain.Organization, chaincodeName string, req chaincode.Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gw, network, err := l.connect(org)
	if err != nil {
		return nil, err
	}
	defer gw.Close()

	contract := network.GetContract(chaincodeName)
	if req.Transient != nil {
		txn, err := contract.CreateTransaction(req.Function, gateway.WithTransient(req.Transient))
		if err != nil {
			return nil, domain.TransactionError{Function: req.Function, Err: err}
		}
		result, err := txn.Submit(req.Args...)
		if err != nil {
			return nil, domain.TransactionError{Function: req.Function, Err: err}
		}
		return result, nil
	}

	result, err := contract.SubmitTransaction(req.Function, req.Args...)
	if err != nil {
		return nil, domain.TransactionError{Function: req.Function, Err: err}
	}
	return result, nil
}

// Query evaluates a read-only transaction; no ordering round trip.
func (l *FabricLedger) Query(ctx context.Context, org domain.Organization, chaincodeName string, req chaincode.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	gw, network, err := l.connect(org)
	if err != nil {
		return "", err
	}
	defer gw.Close()

	result, err := network.GetContract(chaincodeName).EvaluateTransaction(req.Function, req.Args...)
	if err != nil {
		return "", domain.TransactionError{Function: req.Function, Err: err}
	}
	return string(result), nil
}

func (l *FabricLedger) connect(org domain.Organization) (*gateway.Gateway, *gateway.Network, error) {
	wallet, err := gateway.NewFileSystemWallet(l.walletPath)
	if err != nil {
		return nil, nil, domain.ConnectionError{Err: err}
	}
	if !wallet.Exists(org.ClientIdentity) {
		return nil, nil, domain.IdentityNotFoundError{Identity: org.ClientIdentity}
	}

	gw, err := gateway.Connect(
		gateway.WithConfig(fabconfig.FromFile(l.profilePath(org))),
		gateway.WithIdentity(wallet, org.ClientIdentity),
		gateway.WithTimeout(l.timeout),
	)
	if err != nil {
		return nil, nil, domain.ConnectionError{Err: err}
	}

	network, err := gw.GetNetwork(l.channel)
	if err != nil {
		gw.Close()
		return nil, nil, domain.ConnectionError{Err: err}
	}
	return gw, network, nil
}

func (l *FabricLedger) profilePath(org domain.Organization) string {
	return filepath.Join(l.configPath, "connection-profiles", org.ConnectionProfile)
}
