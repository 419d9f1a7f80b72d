package scoring

// lowBand is the "bajo" threshold per category: a sub-score below it earns
// an improvement recommendation on a rejected application.
var lowBand = map[Category]int{
	CategoryCrop:       120,
	CategoryArea:       100,
	CategoryChannel:    130,
	CategoryIrrigation: 120,
	CategoryLocation:   100,
}

// recommendationOrder is the priority in which low categories are reported
var recommendationOrder = []Category{
	CategoryIrrigation,
	CategoryCrop,
	CategoryArea,
	CategoryChannel,
	CategoryLocation,
}

var recommendationText = map[Category]string{
	CategoryIrrigation: "Considere instalar riego por goteo o aspersión para asegurar la producción fuera de la temporada de lluvias.",
	CategoryCrop:       "Evalúe cultivos de mayor valor comercial para su región, como hortalizas de exportación o café.",
	CategoryArea:       "Un área de siembra de al menos 1 hectárea mejora la rentabilidad del proyecto.",
	CategoryChannel:    "Vender a través de una cooperativa o un exportador suele dar mejores precios que el mercado local.",
	CategoryLocation:   "Consulte con un técnico agrícola sobre las prácticas recomendadas para su zona.",
}

// LowCategories lists the categories of r that fall in their "bajo" band,
// in recommendation priority order
func LowCategories(r Result) []Category {
	var low []Category
	for _, c := range recommendationOrder {
		if r.Category(c) < lowBand[c] {
			low = append(low, c)
		}
	}
	return low
}

// Recommendations returns at most two improvement suggestions for r
func Recommendations(r Result) []string {
	var recs []string
	for _, c := range LowCategories(r) {
		if len(recs) == maxRecommendations {
			break
		}
		recs = append(recs, recommendationText[c])
	}
	return recs
}
