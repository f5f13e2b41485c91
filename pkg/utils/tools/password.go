package tools

import (
	"crypto/aes"
	"crypto/cipher"
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"
)

// 密码相关的工具
// 1. RandomPassword: 随机生成一个密码（默认16位），管理员创建用户时使用
// 2. Cryptography: 对称加密，本地会话文件中的token加密保存

const passwordChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomPassword 随机获取N位密码
// length: 密码长度，默认16位
func RandomPassword(length int) string {
	if length <= 0 {
		length = 16
	}

	result := make([]byte, length)
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := range result {
		result[i] = passwordChars[r.Intn(len(passwordChars))]
	}

	return string(result)
}

// Cryptography 对称加密(AES-CBC)
type Cryptography struct {
	block cipher.Block
}

// NewCryptography 创建一个新的加密实例
// key: 密钥，不足16位用 . 补齐，超过16位截断
func NewCryptography(key string) *Cryptography {
	if len(key) > aes.BlockSize {
		key = key[0:aes.BlockSize]
	} else if len(key) < aes.BlockSize {
		key = key + strings.Repeat(".", aes.BlockSize-len(key))
	}

	// 16字节的key不会出错
	block, _ := aes.NewCipher([]byte(key))

	return &Cryptography{block: block}
}

// Encrypt 加密操作，返回十六进制字符串
//
// 每次加密使用随机IV，IV放在密文的第一个块
func (c *Cryptography) Encrypt(text string) (string, error) {
	// 用空格填充到16的倍数，至少填充一个块
	add := aes.BlockSize - (len(text) % aes.BlockSize)
	if len(text) > 0 && add == aes.BlockSize {
		add = 0
	}
	padded := []byte(text + strings.Repeat(" ", add))

	ciphertext := make([]byte, aes.BlockSize+len(padded))
	iv := ciphertext[:aes.BlockSize]
	if _, err := io.ReadFull(crand.Reader, iv); err != nil {
		return "", fmt.Errorf("生成IV失败: %w", err)
	}
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(ciphertext[aes.BlockSize:], padded)

	return hex.EncodeToString(ciphertext), nil
}

// Decrypt 解密操作
func (c *Cryptography) Decrypt(text string) (string, error) {
	data, err := hex.DecodeString(text)
	if err != nil {
		return "", errors.New("无效的加密格式")
	}
	if len(data) < 2*aes.BlockSize || len(data)%aes.BlockSize != 0 {
		return "", errors.New("无效的加密长度")
	}

	iv, ciphertext := data[:aes.BlockSize], data[aes.BlockSize:]
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plaintext, ciphertext)

	// 去除填充的空格
	return strings.TrimRight(string(plaintext), " "), nil
}

// CheckCanDecrypt 判断value是否是加密后的值
func (c *Cryptography) CheckCanDecrypt(value string) (bool, string) {
	tryDecrypt, err := c.Decrypt(value)
	if err != nil {
		return false, ""
	}
	return true, tryDecrypt
}
