package eventbus

import "github.com/google/uuid"

// Token 订阅令牌
//
// 每次订阅生成一个新令牌，不会复用。零值表示"未注册"。
type Token struct {
	id uuid.UUID
}

// NewToken 生成新令牌
func NewToken() Token {
	return Token{id: uuid.New()}
}

// IsZero 是否为零值令牌
func (t Token) IsZero() bool {
	return t.id == uuid.Nil
}

// String 返回令牌的字符串形式
func (t Token) String() string {
	return t.id.String()
}
