package auth

import "golang.org/x/crypto/bcrypt"

// PasswordEncoder — односторонний хэш пароля на bcrypt.
// Соль генерируется на каждый вызов и зашита в сам digest, поэтому
// два хэша одного пароля никогда не совпадают. Сравнение внутри
// bcrypt выполняется за константное время.
type PasswordEncoder struct {
	cost int
}

func NewPasswordEncoder(cost int) *PasswordEncoder {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordEncoder{cost: cost}
}

// Hash кодирует пароль для хранения.
func (e *PasswordEncoder) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), e.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify сверяет пароль с хранимым digest. Несовпадение — это false,
// а не ошибка: различать причины наружу не нужно.
func (e *PasswordEncoder) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
