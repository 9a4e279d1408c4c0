package memtree

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	porc "github.com/anishathalye/porcupine"

	"github.com/mit-pdos/smtproof/merkle"
	"github.com/mit-pdos/smtproof/smthash"
)

// Concurrent puts and proof-checked gets should look like a linearizable map.
// Code based off of:
// https://github.com/anishathalye/porcupine/blob/master/porcupine_test.go

const (
	opGet uint64 = iota
	opPut
)

type kvInput struct {
	op    uint64
	key   byte
	value string
}

type kvOutput struct {
	value string
}

var kvModel = porc.Model{
	Partition: func(history []porc.Operation) [][]porc.Operation {
		m := make(map[byte][]porc.Operation)
		for _, v := range history {
			key := v.Input.(kvInput).key
			m[key] = append(m[key], v)
		}
		keys := make([]int, 0, len(m))
		for k := range m {
			keys = append(keys, int(k))
		}
		sort.Ints(keys)
		ret := make([][]porc.Operation, 0, len(keys))
		for _, k := range keys {
			ret = append(ret, m[byte(k)])
		}
		return ret
	},
	Init: func() interface{} {
		// we're partitioning by key, so model a single key's value.
		// "" stands for absent; puts never write "".
		return ""
	},
	Step: func(state, input, output interface{}) (bool, interface{}) {
		inp := input.(kvInput)
		out := output.(kvOutput)
		st := state.(string)
		switch inp.op {
		case opGet:
			return out.value == st, state
		case opPut:
			return true, inp.value
		default:
			return false, state
		}
	},
	DescribeOperation: func(input, output interface{}) string {
		inp := input.(kvInput)
		out := output.(kvOutput)
		switch inp.op {
		case opGet:
			return fmt.Sprintf("get('%v') -> '%v'", inp.key, out.value)
		case opPut:
			return fmt.Sprintf("put('%v', '%v')", inp.key, inp.value)
		default:
			return "<invalid>"
		}
	},
}

// provenGet only returns values that check out against the tree digest.
func provenGet(t *testing.T, tr *Tree, label []byte) string {
	inTree, val, proof, dig, err := tr.Prove(label)
	if err {
		t.Error("prove errored")
		return ""
	}
	if !bytes.Equal(proof.ImpliedRoot(tr.hasher, label), dig) {
		t.Error("proof doesn't match digest")
	}
	// a lone leaf has an empty path, which Verify rejects.
	if inTree && proof.Depth() != 0 {
		val0, err0 := proof.Verify(tr.hasher, dig, label, tr.Bits())
		if err0 != merkle.ErrNone {
			t.Error("verify:", err0)
		}
		if !bytes.Equal(val, val0) {
			t.Error("verify gave different val")
		}
	}
	if !inTree {
		return ""
	}
	return string(val)
}

func TestPorc(t *testing.T) {
	tr := New(smthash.Blake3(), 8)
	const (
		nClients = 8
		nOps     = 200
		nKeys    = 6
	)

	var clock atomic.Int64
	var mu sync.Mutex
	var ops []porc.Operation
	var wg sync.WaitGroup
	for c := 0; c < nClients; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			rnd := rand.New(rand.NewPCG(uint64(c), 0))
			for i := 0; i < nOps; i++ {
				key := byte(rnd.IntN(nKeys)) << 5
				inp := kvInput{key: key}
				var out kvOutput
				call := clock.Add(1)
				if rnd.IntN(2) == 0 {
					inp.op = opPut
					inp.value = fmt.Sprintf("c%d-%d", c, i)
					if tr.Put([]byte{key}, []byte(inp.value)) {
						t.Error("put errored")
					}
				} else {
					inp.op = opGet
					out.value = provenGet(t, tr, []byte{key})
				}
				ret := clock.Add(1)

				mu.Lock()
				ops = append(ops, porc.Operation{ClientId: c, Input: inp, Call: call, Output: out, Return: ret})
				mu.Unlock()
			}
		}(c)
	}
	wg.Wait()

	if !porc.CheckOperations(kvModel, ops) {
		t.Fatal("history not linearizable")
	}
}
