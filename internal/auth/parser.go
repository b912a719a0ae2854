package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "waste-pickup"

var ErrInvalidToken = errors.New("invalid session token")

// Parser signs and verifies the session cookie. The token only names the session; nothing about
// the admin gate is stored in it.
type Parser struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewParser(secret string, ttl time.Duration) *Parser {
	return &Parser{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (p *Parser) Issue(sessionID uuid.UUID) (string, error) {
	now := p.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   sessionID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func (p *Parser) Parse(token string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(p.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}
