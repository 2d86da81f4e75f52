package pycascade

import (
	"path/filepath"

	"github.com/go-python/gpython/py"
)

// RunScript runs the python file at pathname in a new __main__ module of ctx.
//
// gpython resolves run paths relative to "." and so cannot open an absolute pathname directly;
// the file is instead resolved by name from its own directory.
func RunScript(ctx py.Context, pathname string) (*py.Module, error) {
	absPath, err := filepath.Abs(pathname)
	if err != nil {
		return nil, py.ExceptionNewf(py.OSError, "%v", err)
	}
	opts := py.CompileOpts{
		CurDir: filepath.Dir(absPath),
	}
	return py.RunFile(ctx, filepath.Base(absPath), opts, nil)
}
