// Package redistest 提供基于 radix.Stub 的内存版 Redis，只实现项目用到的命令。
package redistest

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	radix "github.com/mediocregopher/radix/v3"
)

// Store 内存键值，测试里可以直接检查
type Store struct {
	mu   sync.Mutex
	data map[string]string
	// Calls 每条命令的名称，按调用顺序
	Calls []string
}

// New 返回 stub 客户端与它背后的存储
func New() (radix.Client, *Store) {
	s := &Store{data: map[string]string{}}
	return radix.Stub("tcp", "127.0.0.1:6379", s.handle), s
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func (s *Store) handle(args []string) interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd := strings.ToUpper(args[0])
	s.Calls = append(s.Calls, cmd)
	switch cmd {
	case "GET":
		if v, ok := s.data[args[1]]; ok {
			return v
		}
		return nil
	case "SET":
		// 只支持 NX 选项，EX/PX 被忽略
		for _, opt := range args[3:] {
			if strings.ToUpper(opt) == "NX" {
				if _, ok := s.data[args[1]]; ok {
					return nil
				}
			}
		}
		s.data[args[1]] = args[2]
		return "OK"
	case "SETEX":
		s.data[args[1]] = args[3]
		return "OK"
	case "DEL":
		var n int64
		for _, k := range args[1:] {
			if _, ok := s.data[k]; ok {
				delete(s.data, k)
				n++
			}
		}
		return n
	case "INCR":
		n, _ := strconv.ParseInt(s.data[args[1]], 10, 64)
		n++
		s.data[args[1]] = strconv.FormatInt(n, 10)
		return n
	default:
		return errors.New("ERR unknown command " + cmd)
	}
}
