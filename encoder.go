package mpegg

import (
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/mrjoshuak/go-mpegg/internal/box"
	"github.com/mrjoshuak/go-mpegg/internal/codestream"
	"github.com/mrjoshuak/go-mpegg/internal/gabac"
	"github.com/mrjoshuak/go-mpegg/internal/paramcabac"
)

// encoder handles dataset encoding.
type encoder struct {
	w       io.Writer
	ds      *Dataset
	options *Options
	psets   codestream.ParameterSets
}

// newEncoder creates a new encoder.
func newEncoder(w io.Writer, ds *Dataset, options *Options) *encoder {
	return &encoder{
		w:       w,
		ds:      ds,
		options: options,
		psets:   make(codestream.ParameterSets, len(ds.ParameterSets)),
	}
}

// encode encodes the dataset.
func (e *encoder) encode() error {
	for _, ps := range e.ds.ParameterSets {
		if _, dup := e.psets[ps.ID]; dup {
			return fmt.Errorf("%w: parameter set ID %d used twice", ErrInvalidDataset, ps.ID)
		}
		e.psets[ps.ID] = ps
	}

	units, err := e.codeAccessUnits()
	if err != nil {
		return fmt.Errorf("coding access units: %w", err)
	}

	switch e.options.Format {
	case FormatContainer:
		return e.writeContainer(units)
	case FormatDataUnits:
		return e.writeDataUnits(units)
	default:
		return fmt.Errorf("%w: format %v", ErrInvalidOptions, e.options.Format)
	}
}

// writeContainer writes the dataset as boxes.
func (e *encoder) writeContainer(units []*codestream.AccessUnit) error {
	if e.ds.Reference != nil {
		return fmt.Errorf("%w: raw reference requires FormatDataUnits", ErrInvalidDataset)
	}
	c := &box.Container{
		DatasetHeader: e.ds.Header,
		ParameterSets: e.ds.ParameterSets,
		AccessUnits:   units,
	}
	if len(e.ds.ParameterSets) > 0 {
		ps := e.ds.ParameterSets[0]
		c.DatasetHeader.Pos40Bits = ps.Pos40Bits
		c.DatasetHeader.DatasetType = ps.DatasetType
	}
	if e.options.FileHeader {
		c.FileHeader = &box.FileHeader{MajorBrand: box.MajorBrand, MinorVersion: box.MinorVersion}
	}
	return box.WriteContainer(e.w, c)
}

// writeDataUnits writes the dataset as a data unit stream.
func (e *encoder) writeDataUnits(units []*codestream.AccessUnit) error {
	w := codestream.NewWriter(e.w)
	if e.ds.Reference != nil {
		if err := w.WriteRawReference(e.ds.Reference); err != nil {
			return err
		}
	}
	for _, ps := range e.ds.ParameterSets {
		if err := w.WriteParameterSet(ps); err != nil {
			return err
		}
	}
	for _, au := range units {
		if err := w.WriteAccessUnit(au); err != nil {
			return err
		}
	}
	return nil
}

// descriptorJob identifies one descriptor of one access unit.
type descriptorJob struct {
	index int
	au    int
	block int
	desc  paramcabac.DescriptorID
}

// codeAccessUnits entropy codes every non-empty descriptor into a block.
// Blocks are laid out before coding starts and each worker fills its own
// slot, so the output does not depend on the order in which workers finish.
func (e *encoder) codeAccessUnits() ([]*codestream.AccessUnit, error) {
	units := make([]*codestream.AccessUnit, len(e.ds.AccessUnits))
	var jobs []descriptorJob
	for i, au := range e.ds.AccessUnits {
		if _, err := e.psets.Lookup(au.Header.ParameterSetID); err != nil {
			return nil, fmt.Errorf("access unit %d: %w", au.Header.ID, err)
		}
		u := &codestream.AccessUnit{Header: au.Header}
		for d := range au.Descriptors {
			if !au.Descriptors[d].Empty() {
				desc := paramcabac.DescriptorID(d)
				jobs = append(jobs, descriptorJob{index: len(jobs), au: i, block: len(u.Blocks), desc: desc})
				u.Blocks = append(u.Blocks, codestream.Block{Descriptor: desc})
			}
		}
		u.Header.NumBlocks = uint8(len(u.Blocks))
		units[i] = u
	}

	err := runJobs(jobs, e.options.Workers, func(job descriptorJob) error {
		au := e.ds.AccessUnits[job.au]
		payload, err := e.codeDescriptor(au, job.desc)
		if err != nil {
			return fmt.Errorf("access unit %d, descriptor %v: %w", au.Header.ID, job.desc, err)
		}
		units[job.au].Blocks[job.block].Payload = payload
		return nil
	})
	if err != nil {
		return nil, err
	}
	return units, nil
}

// codeDescriptor codes the data of one descriptor with the configuration
// its access unit's parameter set assigns to the access unit's class.
func (e *encoder) codeDescriptor(au *AccessUnit, desc paramcabac.DescriptorID) ([]byte, error) {
	ps := e.psets[au.Header.ParameterSetID]
	cfg, err := ps.DescriptorConfig(desc, au.Header.Class)
	if err != nil {
		return nil, err
	}
	data := &au.Descriptors[desc]

	switch c := cfg.(type) {
	case *paramcabac.Regular:
		if data.Tokens != nil {
			return nil, fmt.Errorf("%w: token data for a regular descriptor", ErrInvalidDataset)
		}
		return gabac.EncodeDescriptor(data.Subsequences, c)
	case *paramcabac.Tokentype:
		if data.Tokens == nil {
			return nil, fmt.Errorf("%w: token-type descriptor without tokens", ErrInvalidDataset)
		}
		return gabac.EncodeTokentype(data.Tokens, c)
	default:
		return nil, fmt.Errorf("%w: data for a descriptor configured absent", ErrInvalidDataset)
	}
}

// runJobs calls fn for every job, concurrently when there is enough work,
// and returns the error of the lowest-indexed failing job.
func runJobs(jobs []descriptorJob, workers int, fn func(descriptorJob) error) error {
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Sequential coding for small job counts or single-threaded mode
	if len(jobs) <= 2 || workers == 1 {
		for _, job := range jobs {
			if err := fn(job); err != nil {
				return err
			}
		}
		return nil
	}

	if workers > len(jobs) {
		workers = len(jobs)
	}

	// Pre-fill job channel before starting workers to reduce contention
	jobChan := make(chan descriptorJob, len(jobs))
	for _, job := range jobs {
		jobChan <- job
	}
	close(jobChan)

	type jobResult struct {
		index int
		err   error
	}
	resultChan := make(chan jobResult, len(jobs))

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				resultChan <- jobResult{index: job.index, err: fn(job)}
			}
		}()
	}

	// Wait for completion
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect errors in order
	errs := make([]error, len(jobs))
	for result := range resultChan {
		errs[result.index] = result.err
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
