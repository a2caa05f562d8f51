package tagmap

// NVDB column names this mapper consults, per spec.md §6's "Recognized
// attribute columns" table. Any property key not named here is
// ignored (spec.md §4.1: "Unrecognized columns are ignored").
const (
	// Class family -> highway=*.
	colMotorvag      = "Motorvag"      // motorway flag
	colMotortrafikled = "Motortrafikled" // motor-traffic route (trunk) flag
	colKlass181      = "Klass_181"     // functional road class, 0-9
	colVagty41       = "Vagty_41"      // path-type code (pedestrian/bicycle overrides)
	colKateg380      = "Kateg_380"     // road category (public/private, GCM infrastructure)

	// Link family.
	colLever292 = "Lever_292" // delivery-quality code
	colFPVK309  = "FPV_k_309" // link-class code

	// Speed family.
	colFHogst225 = "F_Hogst_225" // forward speed limit, km/h
	colBHogst225 = "B_Hogst_225" // backward speed limit, km/h
	colHogst36   = "Hogst_36"    // symmetric speed limit, km/h

	// Weight/size family.
	colHogst46    = "Hogst_46"    // max gross weight, tonnes
	colHogst5530  = "Hogst_55_30" // max axle/bogie load, tonnes
	colFHogst24   = "F_Hogst_24"  // forward direction weight restriction, tonnes
	colBHogst24   = "B_Hogst_24"  // backward direction weight restriction, tonnes
	colFriH143    = "Fri_h_143"   // free height (clearance), metres
	colBredd156   = "Bredd_156"   // road width, metres

	// Access family.
	colFForbjudenFardriktning = "F_ForbjudenFardriktning" // forward direction prohibited
	colBForbjudenFardriktning = "B_ForbjudenFardriktning" // backward direction prohibited
	colFForbudTrafik          = "F_ForbudTrafik"          // forward traffic prohibited
	colBForbudTrafik          = "B_ForbudTrafik"          // backward traffic prohibited
	colFGallar135             = "F_Gallar_135"            // forward vehicle-type restriction code
	colBGallar135             = "B_Gallar_135"            // backward vehicle-type restriction code

	// Lanes family.
	colKorfa497  = "Korfa_497"  // lane count
	colFKorfa517 = "F_Korfa_517" // forward bus/HOV lane code
	colBKorfa517 = "B_Korfa_517" // backward bus/HOV lane code

	// Structures family.
	colKonst190 = "Konst_190" // construction type (bro=bridge, tunnel=tunnel)
	colNamn193  = "Namn_193"  // structure name
	colIdent191 = "Ident_191" // structure identifier

	// Names/refs family.
	colNamn130    = "Namn_130"    // street name
	colVagnr10370 = "Vagnr_10370" // national road number
	colEvag555    = "Evag_555"    // European route number
	colLan558     = "Lan_558"     // county code + letter

	// Surface family.
	colSlitl152 = "Slitl_152" // pavement/wearing-course code

	// Cycle/pedestrian family.
	colLGagata  = "L_Gagata"  // left-side pedestrian-street flag
	colRGagata  = "R_Gagata"  // right-side pedestrian-street flag
	colGCMT502  = "GCM_t_502" // cycle/pedestrian path-type code
	colCCykelled = "C_Cykelled" // signed cycle route flag
	colGCMBelyst = "GCM_belyst" // street lighting flag

	// Ferry family.
	colFarjeled = "Farjeled"  // ferry route flag
	colFarje139 = "Farje_139" // ferry status code (open/closed)

	// Misc family.
	colRondell    = "Rondell_229"    // roundabout flag
	colFarligtGods = "FarligtGods_244" // hazardous-goods restriction flag

	// Administrative family — consumed for join keys, never emitted as tags.
	colKommu141     = "Kommu_141"     // municipality code
	colRouteID      = "ROUTE_ID"      // route identifier
	colFromMeasure  = "FROM_MEASURE"  // position along route, metres
)
