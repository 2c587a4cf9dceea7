package core

// LinkQuality is a coarse, human-readable bucket derived from SNR.
type LinkQuality string

const (
	LinkQualityDown      LinkQuality = "down"
	LinkQualityPoor      LinkQuality = "poor"
	LinkQualityFair      LinkQuality = "fair"
	LinkQualityGood      LinkQuality = "good"
	LinkQualityExcellent LinkQuality = "excellent"
)

// ClassifySNR maps an SNR in dB to a quality bucket and a nominal data rate
// in Mbps. Thresholds are deliberately soft: they exist to make sweep
// output scannable, not to commit to a capacity model.
func ClassifySNR(snrDB float64) (LinkQuality, float64) {
	switch {
	case snrDB < 0:
		return LinkQualityDown, 0
	case snrDB < 5:
		return LinkQualityPoor, 1
	case snrDB < 10:
		return LinkQualityFair, 10
	case snrDB < 20:
		return LinkQualityGood, 50
	default:
		return LinkQualityExcellent, 200
	}
}
