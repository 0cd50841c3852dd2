package engine

import (
	"math/rand"
	"time"
)

// Since the truly unique ID of a running pipeline instance is its struct
// pointer, the alias does not need to ensure 100% uniqueness. A short
// unique-enough alias is ok for simplified troubleshooting (and more readable
// than a uuid). With current combo of chars it's 1 chance in 5.5 million to
// have the same alias name, which is good enough for this purpose.
func NewInstanceAlias() string {
	var a alias
	a.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	return a.cons().vow().cons().cons().vow().cons().name()
}

type alias struct {
	str string
	rnd *rand.Rand
}

func (a alias) vow() alias {
	var vowels = []rune{'a', 'e', 'i', 'o', 'u', 'y'}
	v := vowels[a.rnd.Intn(len(vowels))]
	return alias{str: a.str + string(v), rnd: a.rnd}
}

func (a alias) cons() alias {
	var consonants = []rune{'b', 'c', 'd', 'f', 'g', 'h', 'j', 'k', 'l', 'm', 'n',
		'p', 'q', 'r', 's', 't', 'v', 'w', 'x', 'z'}
	c := consonants[a.rnd.Intn(len(consonants))]
	return alias{str: a.str + string(c), rnd: a.rnd}
}

func (a alias) name() string {
	return a.str
}
