package juriscraper

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/bytedance/sonic"

	"github.com/navindex/juriscraper/htmltree"
)

// ------------------------------------------------------------------------

// A continuation's signature names, via Go types rather than parameter
// names (Go has no runtime name introspection), what the driver must
// compute and pass in. Each of these named types is a
// distinct injectable kind; *Response and *Request are injected as
// themselves, the rest are newtypes so that, e.g., "the originating
// request" and "the parent request" — both conceptually *Request — can
// be told apart by type.
type (
	// PreviousRequest is the ancestry's last element, or a zero value
	// (Req == nil) if the originating request has no ancestry.
	PreviousRequest struct{ Req *Request }

	// JSONContent is the response text parsed as JSON.
	JSONContent struct{ Value any }

	// Text is the raw decoded response text.
	Text string

	// AccumulatedData is the originating request's accumulated_data.
	AccumulatedData map[string]any

	// AuxData is the originating request's aux_data.
	AuxData map[string]any

	// LocalFilepath is, on archive responses, the persisted file path.
	LocalFilepath string
)

// ------------------------------------------------------------------------

// Continuation is the signature every parsing step must reflect-conform
// to: some subset of the injectable types above, in any order, followed
// by a single iter.Seq[Item] return value.
//
// A concrete step looks like:
//
//	func parseCaseList(resp *juriscraper.Response, acc juriscraper.AccumulatedData) iter.Seq[juriscraper.Item] {
//	    return func(yield func(juriscraper.Item) bool) { ... }
//	}
type Continuation = any

// ------------------------------------------------------------------------

// InjectionContext carries everything an Invoke call might need to
// satisfy a continuation's declared parameters.
type InjectionContext struct {
	Response      *Response
	PreviousReq   *Request
	LocalFilepath string
}

// ------------------------------------------------------------------------

var (
	typeResponse        = reflect.TypeOf((*Response)(nil))
	typeRequest         = reflect.TypeOf((*Request)(nil))
	typePreviousRequest = reflect.TypeOf(PreviousRequest{})
	typeJSONContent     = reflect.TypeOf(JSONContent{})
	typeHTMLTreeNode    = reflect.TypeOf((*htmltree.Node)(nil))
	typeText            = reflect.TypeOf(Text(""))
	typeAccumulatedData = reflect.TypeOf(AccumulatedData(nil))
	typeAuxData         = reflect.TypeOf(AuxData(nil))
	typeLocalFilepath   = reflect.TypeOf(LocalFilepath(""))
)

// ------------------------------------------------------------------------

// Invoke reflects over continuation's parameter list, builds each
// argument from ctx, calls it, and returns the resulting item sequence.
// A JSONContent parameter that fails to parse, or a tree parameter over
// an unparsable body, surfaces as an *HTMLStructuralAssumptionException
// returned directly, before dispatch ever starts pulling from the
// sequence.
func Invoke(continuation Continuation, ctx *InjectionContext) (iter.Seq[Item], error) {
	fnVal := reflect.ValueOf(continuation)
	fnType := fnVal.Type()

	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("continuation is not a function: %v", fnType)
	}

	args := make([]reflect.Value, fnType.NumIn())

	for i := 0; i < fnType.NumIn(); i++ {
		arg, err := buildArg(fnType.In(i), ctx)
		if err != nil {
			return nil, err
		}

		args[i] = arg
	}

	out := fnVal.Call(args)
	if len(out) != 1 {
		return nil, fmt.Errorf("continuation must return exactly one iter.Seq[Item], got %d values", len(out))
	}

	seq, ok := out[0].Interface().(iter.Seq[Item])
	if !ok {
		return nil, fmt.Errorf("continuation must return iter.Seq[Item], got %v", fnType.Out(0))
	}

	return seq, nil
}

// ------------------------------------------------------------------------

func buildArg(t reflect.Type, ctx *InjectionContext) (reflect.Value, error) {
	req := ctx.Response.Request

	switch t {
	case typeResponse:
		return reflect.ValueOf(ctx.Response), nil
	case typeRequest:
		return reflect.ValueOf(req), nil
	case typePreviousRequest:
		return reflect.ValueOf(PreviousRequest{Req: ctx.PreviousReq}), nil
	case typeText:
		return reflect.ValueOf(Text(ctx.Response.Text)), nil
	case typeAccumulatedData:
		return reflect.ValueOf(AccumulatedData(req.AccumulatedData)), nil
	case typeAuxData:
		return reflect.ValueOf(AuxData(req.AuxData)), nil
	case typeLocalFilepath:
		return reflect.ValueOf(LocalFilepath(ctx.LocalFilepath)), nil
	case typeJSONContent:
		var v any
		if err := sonic.Unmarshal(ctx.Response.Body, &v); err != nil {
			return reflect.Value{}, &HTMLStructuralAssumptionException{
				Selector:     "",
				SelectorType: "json",
				Description:  "response body is not valid JSON: " + err.Error(),
				URL:          ctx.Response.FinalURL.String(),
			}
		}

		return reflect.ValueOf(JSONContent{Value: v}), nil
	case typeHTMLTreeNode:
		node, err := htmltree.Parse(ctx.Response.Text, ctx.Response.Header.Get("Content-Type"))
		if err != nil {
			return reflect.Value{}, &HTMLStructuralAssumptionException{
				SelectorType: "html",
				Description:  "response body could not be parsed as HTML/XML: " + err.Error(),
				URL:          ctx.Response.FinalURL.String(),
			}
		}

		return reflect.ValueOf(node), nil
	default:
		return reflect.Value{}, fmt.Errorf("continuation requests an unsupported injection type: %s", t)
	}
}
