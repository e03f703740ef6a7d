package xilinx

import (
	"strconv"

	"github.com/hdlforge/xbt/hdl"
)

// The small fixed set of attributes this backend writes is wrapped behind
// typed accessors; the attribute bags themselves stay free-form string maps
// for the benefit of the heterogeneous constraint syntaxes downstream.
const (
	attrKeep      = "keep"
	attrAsyncReg  = "ASYNC_REG"
	attrFalsePath = "xbt.vivado.false_path"
	attrMaxDelay  = "xbt.vivado.max_delay"
)

func setKeep(sig *hdl.Signal) {
	sig.SetAttr(attrKeep, "TRUE")
}

// setAsyncReg marks a synchronizer stage so the synthesis tool neither
// collapses the chain into a shift register nor places the stages apart.
func setAsyncReg(sig *hdl.Signal) {
	sig.SetAttr(attrAsyncReg, "TRUE")
}

func setFalsePath(sig *hdl.Signal) {
	sig.SetAttr(attrFalsePath, "TRUE")
}

func setMaxDelayNs(sig *hdl.Signal, ns float64) {
	sig.SetAttr(attrMaxDelay, strconv.FormatFloat(ns, 'g', -1, 64))
}

// HasKeep reports whether the signal carries the do-not-optimize marker.
func HasKeep(sig *hdl.Signal) bool {
	value, ok := sig.Attr(attrKeep)
	return ok && value == "TRUE"
}

// HasAsyncReg reports whether the signal carries the anti-collapse placement
// marker.
func HasAsyncReg(sig *hdl.Signal) bool {
	value, ok := sig.Attr(attrAsyncReg)
	return ok && value == "TRUE"
}

// HasFalsePath reports whether the signal carries a false-path timing
// exception.
func HasFalsePath(sig *hdl.Signal) bool {
	value, ok := sig.Attr(attrFalsePath)
	return ok && value == "TRUE"
}

// MaxDelayNs returns the maximum-datapath-delay bound of the signal in
// nanoseconds, if one is set.
func MaxDelayNs(sig *hdl.Signal) (float64, bool) {
	value, ok := sig.Attr(attrMaxDelay)
	if !ok {
		return 0, false
	}
	ns, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return ns, true
}
