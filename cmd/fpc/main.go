package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/zephyrtronium/fpc"
)

func main() {
	log.SetFlags(0)
	var (
		verb string
		with [][2]string
		echo bool
		prec int
	)
	addwith := func(s string) error {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		with = append(with, [2]string{strings.TrimSpace(d[0]), strings.TrimSpace(d[1])})
		return nil
	}
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] EXPR\n       %s [flags] MIN MAX PRECISION\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.StringVar(&verb, "fmt", "%.19g", "result formatting string for a single expression")
	flag.Func("given", "name=value variable definition (any number of times)", addwith)
	flag.IntVar(&prec, "p", fpc.DefaultPrec, "precision of calculations in bits")
	flag.BoolVar(&echo, "echo", false, "print the parsed expression")
	flag.Parse()
	if prec <= 0 {
		log.Fatalf("precision (%d) must be positive", prec)
	}

	env := fpc.NewEnv(fpc.Prec(uint(prec)))
	for _, d := range with {
		nm, vl := d[0], d[1]
		r, err := env.Clone().Eval(mustParse(vl))
		if err != nil {
			log.Fatalf("setting %s: %v", nm, err)
		}
		name, sz := utf8.DecodeRuneInString(nm)
		if sz != len(nm) {
			log.Fatalf("variable names are single letters, not %q", nm)
		}
		if err := env.Set(name, r); err != nil {
			log.Fatal(err)
		}
	}

	switch flag.NArg() {
	case 1:
		a := mustParse(flag.Arg(0))
		if echo {
			fmt.Printf("%v : ", a)
		}
		r, err := env.Eval(a)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf(verb+"\n", r)
	case 3:
		p, err := calculate(env, flag.Arg(0), flag.Arg(1), flag.Arg(2))
		if err != nil {
			log.Fatalf("ERROR: %v", err)
		}
		if err := writeReport(os.Stdout, p); err != nil {
			log.Fatal(err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func mustParse(src string) *fpc.Expr {
	a, err := fpc.ParseString(src)
	if err != nil {
		log.Fatalf("%s: %v", src, err)
	}
	return a
}

// calculate resolves the three parameter expressions in env and calculates
// their encoding. The parameter variables must not already be defined.
func calculate(env *fpc.Env, min, max, precision string) (*fpc.Params, error) {
	for _, p := range []fpc.Param{fpc.ParamMin, fpc.ParamMax, fpc.ParamPrecision} {
		if _, ok := env.Lookup(p.Var()); ok {
			return nil, fmt.Errorf("%c is reserved for the resolved %v and cannot be given", p.Var(), p)
		}
	}
	r, err := env.Resolve(min, max, precision)
	if err != nil {
		return nil, err
	}
	return fpc.Calculate(r.Min, r.Max, r.Precision)
}
