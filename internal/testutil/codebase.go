package testutil

import (
	"github.com/roach88/phpnarrow/internal/codebase"
	"github.com/roach88/phpnarrow/internal/ttype"
)

// Codebase returns the class table the package tests share:
//
//	enum Suit { case Hearts; case Spades; }
//	class Bag implements Countable {}
//	final class Collection implements ArrayAccess<int, string> {}
//	interface Shape {}
//	class Circle implements Shape {}
func Codebase() *codebase.Memory {
	cb := codebase.NewMemory()
	cb.Add(codebase.ClassInfo{Name: "Suit", Kind: codebase.KindEnum, Cases: []string{"Hearts", "Spades"}})
	cb.Add(codebase.ClassInfo{Name: "Bag", Kind: codebase.KindClass, Interfaces: []string{"Countable"}})
	cb.Add(codebase.ClassInfo{
		Name:             "Collection",
		Kind:             codebase.KindClass,
		Final:            true,
		Interfaces:       []string{"ArrayAccess"},
		ArrayAccessKey:   ttype.Int(),
		ArrayAccessValue: ttype.Single(ttype.TString{}),
	})
	cb.Add(codebase.ClassInfo{Name: "Shape", Kind: codebase.KindInterface})
	cb.Add(codebase.ClassInfo{Name: "Circle", Kind: codebase.KindClass, Interfaces: []string{"Shape"}})
	return cb
}
