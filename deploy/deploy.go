// Package deploy runs a single contract deployment and reports its outcome
// as one line of text.
package deploy

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Request names the artifact to deploy and its ordered constructor
// arguments. Arguments are passed through untouched; the backend decides
// whether they fit the constructor.
type Request struct {
	Contract string
	Args     []string
}

type Result struct {
	Address string
	TxHash  string
}

// Backend performs the deployment: compile lookup, signing, submission and
// confirmation all happen behind it.
type Backend func(ctx context.Context, contract string, args []string) (Result, error)

type Invoker struct {
	backend Backend
	out     io.Writer
	log     *logrus.Entry
}

func NewInvoker(backend Backend, out io.Writer, log *logrus.Entry) *Invoker {
	return &Invoker{
		backend: backend,
		out:     out,
		log:     log,
	}
}

// Run calls the backend once and writes either "address: <addr>" or the
// error message to the output. The error is returned for logging only.
func (i *Invoker) Run(ctx context.Context, req Request) error {
	args := make([]string, len(req.Args))
	copy(args, req.Args)

	log := i.log.WithField("contract", req.Contract)
	log.WithField("args", len(args)).Debug("deploying")

	res, err := i.backend(ctx, req.Contract, args)
	if err != nil {
		log.WithError(err).Debug("deployment failed")
		i.println(err.Error())
		return err
	}

	log.WithField("tx", res.TxHash).Debug("deployment confirmed")
	i.println("address: " + res.Address)
	return nil
}

func (i *Invoker) println(line string) {
	if _, err := fmt.Fprintln(i.out, line); err != nil {
		i.log.WithError(err).Error("failed to write deployment outcome")
	}
}
