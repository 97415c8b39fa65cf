package gateway

import (
	"log/slog"

	mspclient "github.com/hyperledger/fabric-sdk-go/pkg/client/msp"
	fabconfig "github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-sdk-go/pkg/fabsdk"
	"github.com/hyperledger/fabric-sdk-go/pkg/gateway"
	"github.com/pkg/errors"

	"github.com/kehm/eckochain-client/internal/domain"
)

// Enroll enrolls the organization's client identity with its CA and stores
// the X.509 credential in the wallet. A no-op when the credential already
// exists.
func (l *FabricLedger) Enroll(org domain.Organization) error {
	wallet, err := gateway.NewFileSystemWallet(l.walletPath)
	if err != nil {
		return domain.ConnectionError{Err: err}
	}
	if wallet.Exists(org.ClientIdentity) {
		return nil
	}

	sdk, err := fabsdk.New(fabconfig.FromFile(l.profilePath(org)))
	if err != nil {
		return domain.ConnectionError{Err: err}
	}
	defer sdk.Close()

	caClient, err := mspclient.New(sdk.Context(), mspclient.WithOrg(org.FabricName))
	if err != nil {
		return domain.ConnectionError{Err: err}
	}
	if err := caClient.Enroll(org.ClientIdentity, mspclient.WithSecret(org.ClientSecret)); err != nil {
		return errors.Wrapf(err, "enroll %s", org.ClientIdentity)
	}

	identity, err := caClient.GetSigningIdentity(org.ClientIdentity)
	if err != nil {
		return errors.Wrapf(err, "signing identity %s", org.ClientIdentity)
	}
	key, err := identity.PrivateKey().Bytes()
	if err != nil {
		return errors.Wrapf(err, "private key %s", org.ClientIdentity)
	}

	err = wallet.Put(org.ClientIdentity, gateway.NewX509Identity(
		org.MspID,
		string(identity.EnrollmentCertificate()),
		string(key),
	))
	if err != nil {
		return err
	}
	slog.Info("enrolled client identity",
		slog.String("identity", org.ClientIdentity),
		slog.String("organization", org.FabricName),
	)
	return nil
}

// EnrollAll enrolls every given organization, logging failures per
// organization instead of aborting the batch.
func (l *FabricLedger) EnrollAll(orgs []domain.Organization) {
	for _, org := range orgs {
		if err := l.Enroll(org); err != nil {
			slog.Error("enrollment failed",
				slog.String("organization", org.FabricName),
				slog.String("error", err.Error()),
			)
		}
	}
}
