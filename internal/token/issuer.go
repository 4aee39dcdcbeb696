package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// アクセストークンの有効期限
const AccessTokenTTL = 30 * time.Minute

var ErrInvalidAccessToken = errors.New("invalid access token")

// 検証済みアクセストークンから取り出すクレーム。
type Claims struct {
	Username string
	TokenID  string
	Country  string
	Roles    []string
}

// IssuerはHS512でアクセストークンを発行・検証する。
// 永続状態は持たない。
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

func NewIssuer(secret string, issuer string, audience string) *Issuer {
	return &Issuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		now:      time.Now,
	}
}

// Issue はアカウントのクレームを署名して返す。
// jtiは毎回変わるので同一入力でもトークン文字列は毎回異なる。
func (i *Issuer) Issue(username string, roles []string, country string) (string, error) {
	now := i.now().UTC()
	exp := now.Add(AccessTokenTTL)

	claims := jwt.MapClaims{
		"sub":     username,
		"jti":     uuid.NewString(),
		"country": country,
		"roles":   roles,
		"iss":     i.issuer,
		"aud":     i.audience,
		"iat":     now.Unix(),
		"exp":     exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", err
	}

	return signed, nil
}

// Parse は署名と期限を検証してクレームを返す。
func (i *Issuer) Parse(raw string) (Claims, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS512 {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil || parsed == nil || !parsed.Valid {
		return Claims{}, ErrInvalidAccessToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidAccessToken
	}

	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return Claims{}, ErrInvalidAccessToken
	}

	jti, _ := mapClaims["jti"].(string)
	country, _ := mapClaims["country"].(string)

	return Claims{
		Username: sub,
		TokenID:  jti,
		Country:  country,
		Roles:    parseRoles(mapClaims["roles"]),
	}, nil
}

func parseRoles(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}

	roles := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}
