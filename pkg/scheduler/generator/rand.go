package generator

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"time"
)

// Rand 随机数来源，测试时可注入固定序列
type Rand interface {
	// IntN 返回 [0, n) 内的整数
	IntN(n int) int
}

// NewRand 由种子和尝试序号派生该次尝试独立的随机数来源
func NewRand(seed uint64, trial int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(trial)))
}

// RandomSeed 从系统熵生成种子
func RandomSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}
