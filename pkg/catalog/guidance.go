package catalog

import "fmt"

// Category is the heuristic class of a barcode that is not in the catalog.
type Category int

const (
	CategoryDomestic      Category = iota // EAN-13, leading 8
	CategoryInternational                 // EAN-13, leading 9
	CategoryGeneral                       // EAN-13, other leading digit
	CategoryUPCA
	CategoryEAN8
	CategorySpecial
)

func (c Category) String() string {
	switch c {
	case CategoryDomestic:
		return "Domestic"
	case CategoryInternational:
		return "International"
	case CategoryGeneral:
		return "General"
	case CategoryUPCA:
		return "UPC-A"
	case CategoryEAN8:
		return "EAN-8"
	case CategorySpecial:
		return "Special"
	default:
		return "Unknown"
	}
}

// Guidance is the static usage text shown for a category.
type Guidance struct {
	Product string
	Usages  []string
	Hint    string
}

// Categorize picks a category from the length and leading digit of a normalized code.
func Categorize(code string) Category {
	switch len(code) {
	case 13:
		switch code[0] {
		case '8':
			return CategoryDomestic
		case '9':
			return CategoryInternational
		default:
			return CategoryGeneral
		}
	case 12:
		return CategoryUPCA
	case 8:
		return CategoryEAN8
	default:
		return CategorySpecial
	}
}

var guidanceTable = map[Category]Guidance{
	CategoryDomestic: {
		Product: "국내 상품 (EAN-13)",
		Usages:  []string{"소매점 상품 관리", "재고 관리 시스템", "POS 시스템", "온라인 쇼핑몰"},
		Hint:    "제품 포장지나 라벨에서 바코드 번호를 확인할 수 있습니다.",
	},
	CategoryInternational: {
		Product: "국제 상품 (EAN-13)",
		Usages:  []string{"국제 무역", "해외 상품 관리", "통관 시스템", "글로벌 유통"},
		Hint:    "제품의 원산지 표시와 함께 확인하세요.",
	},
	CategoryGeneral: {
		Product: "일반 상품 (EAN-13)",
		Usages:  []string{"일반 소매점", "대형마트", "편의점", "온라인 쇼핑"},
		Hint:    "제품 포장지의 바코드를 스캔하거나 수동으로 입력하세요.",
	},
	CategoryUPCA: {
		Product: "미국 표준 상품 (UPC-A)",
		Usages:  []string{"미국 시장 상품", "북미 지역 유통", "해외 직구 상품", "국제 상품 관리"},
		Hint:    "미국에서 제조된 상품의 경우 주로 사용됩니다.",
	},
	CategoryEAN8: {
		Product: "소형 상품 (EAN-8)",
		Usages:  []string{"작은 포장 상품", "편의점 상품", "자판기 상품", "소형 제품 관리"},
		Hint:    "작은 제품의 경우 공간 제약으로 짧은 바코드를 사용합니다.",
	},
	CategorySpecial: {
		Product: "특수 바코드 (%d자리)",
		Usages:  []string{"내부 관리 시스템", "특수 용도 상품", "기업 내부 코드", "맞춤형 관리 시스템"},
		Hint:    "해당 기업이나 조직의 내부 시스템을 확인하세요.",
	},
}

// guidanceFor returns a copy of the category's guidance. Special codes carry
// their digit count in the product line.
func guidanceFor(cat Category, digits int) Guidance {
	g := guidanceTable[cat]
	g.Usages = append([]string(nil), g.Usages...)
	if cat == CategorySpecial {
		g.Product = fmt.Sprintf(g.Product, digits)
	}
	return g
}
