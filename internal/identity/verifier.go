package identity

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PohSayKeong/fundl/internal/config"
	"github.com/PohSayKeong/fundl/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

const accountTypeWallet = "wallet"

// LinkedAccount 身份绑定的账户，只关心钱包地址
type LinkedAccount struct {
	Type      string `json:"type"`
	Address   string `json:"address,omitempty"`
	ChainType string `json:"chain_type,omitempty"`
}

// Identity 验证通过的用户身份
type Identity struct {
	UserId         string
	LinkedAccounts []LinkedAccount
}

// OwnsAddress 身份是否绑定了该钱包地址，大小写不敏感
func (i *Identity) OwnsAddress(address string) bool {
	if i == nil || address == "" {
		return false
	}
	for _, account := range i.LinkedAccounts {
		if account.Type == accountTypeWallet && strings.EqualFold(account.Address, address) {
			return true
		}
	}
	return false
}

// Claims 身份令牌载荷；linked_accounts 可能是 JSON 字符串或数组
type Claims struct {
	jwt.RegisteredClaims
	LinkedAccounts json.RawMessage `json:"linked_accounts,omitempty"`
}

// Accounts 解析 linked_accounts
func (c *Claims) Accounts() ([]LinkedAccount, error) {
	raw := c.LinkedAccounts
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, err
		}
		raw = json.RawMessage(encoded)
	}
	var accounts []LinkedAccount
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Verifier 校验 ES256 身份令牌
type Verifier struct {
	key    *ecdsa.PublicKey
	appId  string
	issuer string
	now    func() time.Time
}

// NewVerifier 由配置中的公钥 PEM 创建验证器
func NewVerifier(cfg config.IdentityConfig) (*Verifier, error) {
	if cfg.AppId == "" {
		return nil, errors.New("identity.app_id is required")
	}
	key, err := jwt.ParseECPublicKeyFromPEM([]byte(cfg.VerificationKey))
	if err != nil {
		return nil, fmt.Errorf("invalid identity verification key: %w", err)
	}
	return &Verifier{
		key:    key,
		appId:  cfg.AppId,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// Verify 校验令牌并返回身份。缺失或结构不完整返回 model.ErrMissingToken，
// 签名、签发方、受众或有效期不符返回 model.ErrInvalidToken
func (v *Verifier) Verify(token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" || strings.Count(token, ".") != 2 {
		return nil, model.ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithAudience(v.appId),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", model.ErrInvalidToken)
	}

	accounts, err := claims.Accounts()
	if err != nil {
		return nil, fmt.Errorf("%w: linked_accounts: %v", model.ErrInvalidToken, err)
	}
	return &Identity{UserId: claims.Subject, LinkedAccounts: accounts}, nil
}
