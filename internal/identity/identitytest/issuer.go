// Package identitytest 签发测试用身份令牌
package identitytest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"time"

	"github.com/PohSayKeong/fundl/internal/config"
	"github.com/PohSayKeong/fundl/internal/identity"
	"github.com/golang-jwt/jwt/v5"
)

const (
	AppId  = "test-app"
	Issuer = "privy.io"
)

// Signer 持有一把 P-256 私钥
type Signer struct {
	key *ecdsa.PrivateKey
}

// NewSigner 生成新密钥
func NewSigner() *Signer {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		panic(err)
	}
	return &Signer{key: key}
}

// PublicKeyPEM 公钥 PEM
func (s *Signer) PublicKeyPEM() string {
	der, err := x509.MarshalPKIXPublicKey(&s.key.PublicKey)
	if err != nil {
		panic(err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

// Config 与该密钥匹配的身份配置
func (s *Signer) Config() config.IdentityConfig {
	return config.IdentityConfig{
		AppId:           AppId,
		Issuer:          Issuer,
		VerificationKey: s.PublicKeyPEM(),
		Header:          "privy-id-token",
	}
}

// Verifier 与该密钥匹配的验证器
func (s *Signer) Verifier() *identity.Verifier {
	v, err := identity.NewVerifier(s.Config())
	if err != nil {
		panic(err)
	}
	return v
}

// Token 为用户签发一小时有效的令牌，wallets 作为绑定钱包
func (s *Signer) Token(userId string, wallets ...string) string {
	accounts := make([]identity.LinkedAccount, 0, len(wallets))
	for _, w := range wallets {
		accounts = append(accounts, identity.LinkedAccount{Type: "wallet", Address: w, ChainType: "ethereum"})
	}
	encoded, err := json.Marshal(accounts)
	if err != nil {
		panic(err)
	}
	// linked_accounts 以字符串形式嵌入
	linked, err := json.Marshal(string(encoded))
	if err != nil {
		panic(err)
	}

	now := time.Now()
	return s.Sign(&identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userId,
			Audience:  jwt.ClaimStrings{AppId},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		LinkedAccounts: linked,
	})
}

// Sign 按给定载荷签名
func (s *Signer) Sign(claims *identity.Claims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(s.key)
	if err != nil {
		panic(err)
	}
	return token
}
