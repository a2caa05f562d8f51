package tagmap

import (
	"fmt"
	"strconv"
	"strings"

	"nvdb2osm/pkg/segment"
)

// classify implements the highway=* cascade of spec.md §6's class
// family: motorway and motor-traffic-route flags take precedence over
// the functional-class table, which is itself overridden by
// pedestrian/bicycle path-type codes. Returns "" when the segment
// carries no recognizable class column at all (the segment is kept,
// just untagged for highway — spec.md §4.1 does not require dropping
// on missing class).
func classify(p segment.Properties) string {
	if pathType, ok := pathTypeHighway(p); ok {
		return pathType
	}
	if yes, ok := p.Get(colMotorvag).AsBool(); ok && yes {
		return "motorway"
	}
	if yes, ok := p.Get(colMotortrafikled).AsBool(); ok && yes {
		return "trunk"
	}
	if fc, ok := p.Get(colKlass181).AsInt(); ok {
		return functionalClassHighway(fc)
	}
	return ""
}

// functionalClassHighway maps NVDB's 0-9 functional road class to an
// OSM highway value. The 10 codes split unevenly across 7 buckets:
// classes 0-5 share buckets in pairs (0-1, 2-3, 4-5), while 6, 7, 8
// and 9 each get a bucket of their own.
func functionalClassHighway(fc int64) string {
	switch {
	case fc <= 1:
		return "primary"
	case fc <= 3:
		return "secondary"
	case fc <= 5:
		return "tertiary"
	case fc == 6:
		return "unclassified"
	case fc == 7:
		return "residential"
	case fc == 8:
		return "service"
	default:
		return "track"
	}
}

// pathTypeHighway recognizes Vagty_41/Kateg_380/GCM_t_502 path-type
// codes that indicate the segment is pedestrian or bicycle
// infrastructure rather than a general carriageway, per spec.md §4.1
// item 1: "pedestrian and bicycle-only variants are detected via the
// path-type columns and override the functional-class cascade".
// GCM_t_502 is NVDB's dedicated cycle/pedestrian-network path-type
// code (distinct from Vagty_41/Kateg_380, which classify the
// carriageway itself); it is checked last since it only ever fires on
// segments already restricted to the GCM network.
func pathTypeHighway(p segment.Properties) (string, bool) {
	code, ok := p.Get(colVagty41).AsString()
	if !ok {
		code, ok = p.Get(colKateg380).AsString()
	}
	if !ok {
		code, ok = p.Get(colGCMT502).AsString()
	}
	if !ok {
		return "", false
	}
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "gangbana", "gångbana", "fot":
		return "footway", true
	case "cykelbana", "cykel":
		return "cycleway", true
	case "gangcykelbana", "gångcykelbana", "gcm":
		return "path", true
	case "torg", "gagata", "gågata":
		return "pedestrian", true
	default:
		return "", false
	}
}

// applyLinkSuffix appends "_link" to a ramp/connector highway value
// when either the delivery-quality or the link-class column flags the
// segment as a link, per spec.md §4.1 item 2.
func applyLinkSuffix(highway string, p segment.Properties) string {
	if highway == "" || strings.HasSuffix(highway, "_link") {
		return highway
	}
	if !linkEligible(highway) {
		return highway
	}
	if isLink(p.Get(colLever292)) || isLink(p.Get(colFPVK309)) {
		return highway + "_link"
	}
	return highway
}

func linkEligible(highway string) bool {
	switch highway {
	case "motorway", "trunk", "primary", "secondary", "tertiary":
		return true
	default:
		return false
	}
}

func isLink(v segment.Value) bool {
	if s, ok := v.AsString(); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "ramp", "link", "anslutning", "trafikplats":
			return true
		}
	}
	if n, ok := v.AsBool(); ok {
		return n
	}
	return false
}

// applyAccess sets oneway, access and per-mode restriction tags from
// the direction/prohibition family (spec.md §4.1 item 3).
func applyAccess(b *builder, p segment.Properties) {
	fwdBanned, fOK := p.Get(colFForbjudenFardriktning).AsBool()
	bwdBanned, bOK := p.Get(colBForbjudenFardriktning).AsBool()
	switch {
	case fOK && fwdBanned && !(bOK && bwdBanned):
		b.set("oneway", "yes")
	case bOK && bwdBanned && !(fOK && fwdBanned):
		b.set("oneway", "-1")
	}

	fClosed, fcOK := p.Get(colFForbudTrafik).AsBool()
	bClosed, bcOK := p.Get(colBForbudTrafik).AsBool()
	if fcOK && bcOK && fClosed && bClosed {
		b.set("access", "no")
	}

	if key, ok := vehicleRestrictionKey(p.Get(colFGallar135)); ok {
		b.set(key, "no")
	}
	if key, ok := vehicleRestrictionKey(p.Get(colBGallar135)); ok {
		b.set(key, "no")
	}
}

// vehicleRestrictionKey picks the narrowest OSM access key matching a
// Gallar (restriction scope) code, per spec.md §4.1 item 3: "the
// narrowest matching vehicle-restriction key is set to no".
func vehicleRestrictionKey(v segment.Value) (string, bool) {
	code, ok := v.AsString()
	if !ok {
		return "", false
	}
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "hgv", "lastbil", "tung":
		return "hgv", true
	case "bus", "buss":
		return "bus", true
	case "bicycle", "cykel":
		return "bicycle", true
	case "foot", "gang", "gång":
		return "foot", true
	case "motor_vehicle", "motorfordon":
		return "motor_vehicle", true
	default:
		return "", false
	}
}

// applyWeightAndSize emits maxweight/maxaxleload/maxheight/width from
// the weight/size family, per spec.md §4.1 item 3. Units are always
// tonnes or metres in NVDB and are never re-stated in the tag value,
// matching OSM convention.
func applyWeightAndSize(b *builder, p segment.Properties) {
	if v, ok := numericString(p.Get(colHogst46)); ok {
		b.set("maxweight", v)
	}
	if v, ok := numericString(p.Get(colHogst5530)); ok {
		b.set("maxaxleload", v)
	}
	if v, ok := numericString(p.Get(colFHogst24)); ok {
		b.set("maxweight:forward", v)
	}
	if v, ok := numericString(p.Get(colBHogst24)); ok {
		b.set("maxweight:backward", v)
	}
	if v, ok := numericString(p.Get(colFriH143)); ok {
		b.set("maxheight", v)
	}
	if v, ok := numericString(p.Get(colBredd156)); ok {
		b.set("width", v)
	}
}

// applySpeed emits maxspeed/:forward/:backward, omitting the tag
// entirely when the column is missing or zero (spec.md §4.1 item 4:
// "a zero or absent speed limit produces no maxspeed tag").
func applySpeed(b *builder, p segment.Properties) {
	if v, ok := positiveNumericString(p.Get(colHogst36)); ok {
		b.set("maxspeed", v)
		return
	}
	if v, ok := positiveNumericString(p.Get(colFHogst225)); ok {
		b.set("maxspeed:forward", v)
	}
	if v, ok := positiveNumericString(p.Get(colBHogst225)); ok {
		b.set("maxspeed:backward", v)
	}
}

// applySurface maps the wearing-course code to an OSM surface value.
func applySurface(b *builder, p segment.Properties) {
	code, ok := p.Get(colSlitl152).AsString()
	if !ok {
		return
	}
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "ab", "oljegrus", "asfalt":
		b.set("surface", "asphalt")
	case "grus":
		b.set("surface", "gravel")
	case "sten", "kallsten", "gatsten":
		b.set("surface", "paving_stones")
	case "obelagd":
		b.set("surface", "unpaved")
	default:
		b.set("surface", "paved")
	}
}

// applyLanes emits lanes and busway:left/right from the lanes family.
func applyLanes(b *builder, p segment.Properties) {
	if n, ok := p.Get(colKorfa497).AsInt(); ok && n > 0 {
		b.set("lanes", strconv.FormatInt(n, 10))
	}
	if isBusLane(p.Get(colFKorfa517)) {
		b.set("busway:right", "lane")
	}
	if isBusLane(p.Get(colBKorfa517)) {
		b.set("busway:left", "lane")
	}
}

func isBusLane(v segment.Value) bool {
	if s, ok := v.AsString(); ok {
		low := strings.ToLower(strings.TrimSpace(s))
		return low == "kollektiv" || low == "buss" || low == "bus"
	}
	return false
}

// applyStructures emits bridge/tunnel + layer + name from the
// construction-type column, per spec.md §4.1 item 5: "layer defaults
// to +1 for a bridge, -1 for a tunnel, unless overridden".
func applyStructures(b *builder, p segment.Properties) {
	code, ok := p.Get(colKonst190).AsString()
	if !ok {
		return
	}
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "bro", "bridge":
		b.set("bridge", "yes")
		b.set("layer", "1")
		if name, ok := p.Get(colNamn193).AsString(); ok && name != "" {
			b.set("bridge:name", name)
		}
	case "tunnel":
		b.set("tunnel", "yes")
		b.set("layer", "-1")
		if name, ok := p.Get(colNamn193).AsString(); ok && name != "" {
			b.set("tunnel:name", name)
		}
	}
}

// applyNamesAndRefs builds name and the composite ref string
// "E<european>;<national>;<county><letter>", omitting any component
// whose source column is absent (spec.md §4.1 item 7).
func applyNamesAndRefs(b *builder, p segment.Properties) {
	if name, ok := p.Get(colNamn130).AsString(); ok && name != "" {
		b.set("name", name)
	}

	var parts []string
	if euro, ok := p.Get(colEvag555).AsString(); ok && euro != "" {
		parts = append(parts, "E"+strings.TrimSpace(euro))
	}
	if national, ok := p.Get(colVagnr10370).AsString(); ok && national != "" {
		parts = append(parts, strings.TrimSpace(national))
	}
	if county, ok := p.Get(colLan558).AsString(); ok && county != "" {
		parts = append(parts, strings.TrimSpace(county))
	}
	if len(parts) > 0 {
		b.set("ref", strings.Join(parts, ";"))
	}
}

// applyCycleAndMisc covers the remaining single-purpose columns:
// living_street/pedestrian overrides, signed cycle routes, lighting,
// and roundabouts (spec.md §4.1 items 1 and 8).
func applyCycleAndMisc(b *builder, p segment.Properties, highway string) {
	leftPed, lOK := p.Get(colLGagata).AsBool()
	rightPed, rOK := p.Get(colRGagata).AsBool()
	if (lOK && leftPed) || (rOK && rightPed) {
		b.set("highway", "living_street")
	}
	if yes, ok := p.Get(colCCykelled).AsBool(); ok && yes && highway == "" {
		b.set("highway", "cycleway")
	}
	if yes, ok := p.Get(colGCMBelyst).AsBool(); ok && yes {
		b.set("lit", "yes")
	}
	if yes, ok := p.Get(colRondell).AsBool(); ok && yes {
		b.set("junction", "roundabout")
	}
	if yes, ok := p.Get(colFarligtGods).AsBool(); ok && yes {
		b.set("hazmat", "designated")
		b.set("maxweight:hgv", "no")
	}
}

// isFerry reports whether the segment represents a ferry connection,
// and whether that connection is closed and should therefore be
// dropped entirely (spec.md §4.1 item 1 and §4.3: "closed ferry
// connections are dropped, not emitted with access=no").
func isFerry(p segment.Properties) (ferry bool, closed bool) {
	yes, ok := p.Get(colFarjeled).AsBool()
	if !ok || !yes {
		return false, false
	}
	status, ok := p.Get(colFarje139).AsString()
	if ok {
		low := strings.ToLower(strings.TrimSpace(status))
		if low == "stangd" || low == "stängd" || low == "closed" {
			return true, true
		}
	}
	return true, false
}

// numericString renders any numeric-coercible value as a trimmed
// decimal string, or ("", false) if the column is absent or malformed.
func numericString(v segment.Value) (string, bool) {
	f, ok := v.AsFloat()
	if !ok {
		return "", false
	}
	return formatNumber(f), true
}

// positiveNumericString is numericString with the additional
// spec.md §4.1 item 4 rule that zero is treated as absent.
func positiveNumericString(v segment.Value) (string, bool) {
	f, ok := v.AsFloat()
	if !ok || f <= 0 {
		return "", false
	}
	return formatNumber(f), true
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprintf("%g", f)
}
