package service

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/kehm/eckochain-client/internal/domain"
)

var tracer = otel.Tracer("service")

// AuthService resolves session tokens to requesters. Sessions are written by
// the external identity provider; this service only reads them and trusts
// their content.
type AuthService struct {
	rdb *redis.Client
}

func NewAuthService(rdb *redis.Client) *AuthService {
	return &AuthService{rdb: rdb}
}

type session struct {
	UserID         string `json:"userId"`
	OrganizationID int    `json:"organizationId"`
	Role           string `json:"role"`
	EmailVerified  bool   `json:"emailVerified"`
}

// AuthSession looks up the session for token and returns the requester it
// identifies.
func (s *AuthService) AuthSession(ctx context.Context, token string) (*domain.Requester, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.AuthSession")
	defer span.End()

	payload, err := s.rdb.Get(ctx, "session:"+token).Result()
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "session lookup failed")
	}

	var sess session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "session payload invalid")
	}

	return &domain.Requester{
		UserID:         sess.UserID,
		OrganizationID: sess.OrganizationID,
		Role:           sess.Role,
		EmailVerified:  sess.EmailVerified,
	}, nil
}
