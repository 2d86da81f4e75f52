package libcascade

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/fine-structures/coralia/gocascade"
	"github.com/pkg/errors"
)

// SequenceExpr is a list of integer terms where commas and whitespace (including newlines) are
// interchangeable separators.  Runs of separators collapse into one, so blank tokens are dropped,
// but adjacent terms must be separated: "1-2" is an error, not [1 -2].
type SequenceExpr struct {
	Terms []string `parser:"Sep? ( @Int ( Sep @Int )* Sep? )?"`
}

var sSequenceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Sep", Pattern: `[,\s]+`},
})

var sParseSequenceExpr = participle.MustBuild[SequenceExpr](
	participle.Lexer(sSequenceLexer),
	participle.UseLookahead(2),
)

// ParseSequence reads a sequence from its text form, e.g. "1,2,3" or "1\n2\n3\n".
func ParseSequence(text string) (gocascade.Sequence, error) {
	if strings.Trim(text, ", \t\r\n") == "" {
		return gocascade.Sequence{}, nil
	}

	expr, err := sParseSequenceExpr.ParseString("", text)
	if err != nil {
		return nil, errors.Wrap(gocascade.ErrParse, err.Error())
	}

	seq := make(gocascade.Sequence, 0, len(expr.Terms))
	for _, term := range expr.Terms {
		val, err := strconv.Atoi(term)
		if err != nil {
			return nil, errors.Wrapf(gocascade.ErrParse, "term %d: %v", len(seq)+1, err)
		}
		seq = append(seq, val)
	}
	return seq, nil
}

// ReadSequence parses everything from r.
func ReadSequence(r io.Reader) (gocascade.Sequence, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseSequence(string(buf))
}

// ReadSequenceFile parses the sequence file at pathname.
func ReadSequenceFile(pathname string) (gocascade.Sequence, error) {
	file, err := os.Open(pathname)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	seq, err := ReadSequence(file)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %q", pathname)
	}
	return seq, nil
}

// WriteSequence writes seq as text using opts.Sep between terms.
// A newline separator also terminates the last term.
func WriteSequence(out io.Writer, seq gocascade.Sequence, opts gocascade.PrintOpts) error {
	sep := opts.Sep
	if sep == "" {
		sep = gocascade.DefaultPrintOpts.Sep
	}

	w := bufio.NewWriter(out)
	var scrap [24]byte
	for i, Si := range seq {
		if i > 0 {
			w.WriteString(sep)
		}
		w.Write(strconv.AppendInt(scrap[:0], int64(Si), 10))
	}
	if len(seq) > 0 && strings.HasSuffix(sep, "\n") {
		w.WriteString(sep)
	} else if len(seq) > 0 {
		w.WriteByte('\n')
	}
	return w.Flush()
}

// WriteSequenceFile writes seq to pathname, replacing any existing file.
func WriteSequenceFile(pathname string, seq gocascade.Sequence, opts gocascade.PrintOpts) error {
	file, err := os.OpenFile(pathname, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	if err = WriteSequence(file, seq, opts); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
