package catalog

const imageBase = "https://cdn.cuckoo.co.kr/upload_cuckoo/_bo_rental/product/"

// NoPhotoForM marks parts whose M model photo is missing.
const NoPhotoForM = "M 모델 사진은 제공되지 않습니다."

var (
	modelsAAS = []string{"AAS", "ABS", "AHS"}
	modelsM   = []string{"M", "U", "AK", "SS100(일부)"}
	modelsTS  = []string{"TS", "SS(일부)"}

	imagesAAS = []string{
		imageBase + "ea64591f-6f68-48ce-b318-5a748fac7d20.jpg",
		imageBase + "5079ad3c-7fe5-4280-b654-edfb6e1c13a7.jpg",
		imageBase + "7a5e10c7-d312-408c-b6ee-a1bf30b2e87d.jpg",
	}
	imagesM = []string{
		imageBase + "b0ca930a-dc26-4f85-bf67-af9827d0b005.jpg",
		imageBase + "38fe1de0-7052-4247-be77-60a53f51e7a1.jpg",
		imageBase + "9cc1372f-ccf0-4036-89a2-9a5794de8553.jpg",
	}
	imagesTS = []string{
		imageBase + "553f469b-11da-4aa7-81c8-368da7c365f9.jpg",
		imageBase + "b0ca930a-dc26-4f85-bf67-af9827d0b005.jpg",
	}
)

var knownParts = []BarcodeRecord{
	{
		Code:             "8809841630962",
		ApplicableModels: modelsAAS,
		Variants: []Variant{{
			PartName:   "SVC_METAL-BLOCK20_FTASM_08_CP-ALL_KR",
			PartNumber: "10420-0191J0",
			ImageURLs:  imagesAAS,
		}},
	},
	{
		Code:             "8809591513836",
		ApplicableModels: modelsAAS,
		Variants: []Variant{{
			PartName:   "SVC_NANOPOSITIVEPLUS30_FTASM_08_CP-ALL_KR",
			PartNumber: "Z0420-0210U0",
			ImageURLs:  imagesAAS,
		}},
	},
	{
		Code:             "8809591517872",
		ApplicableModels: modelsM,
		Variants: []Variant{{
			PartName:   "SVC_DS-CARBON-COMPOSITE_FTASM_08_CP-ALL_KR",
			PartNumber: "00420-0367S0",
			ImageURLs:  imagesM,
			Note:       NoPhotoForM,
		}},
	},
	{
		Code:             "8809591519135",
		ApplicableModels: modelsM,
		Variants: []Variant{{
			PartName:   "SVC_NATURALPLUS20_FTASM_08_CP-ALL_KR",
			PartNumber: "00420-0383Y0",
			ImageURLs:  imagesM,
			Note:       NoPhotoForM,
		}},
	},
	{
		Code:             "8809591519128",
		ApplicableModels: modelsM,
		Variants: []Variant{{
			PartName:   "SVC_NANOPOSITIVE30C_FTASM_08_3FILTER_KR",
			PartNumber: "Z0420-0209C2",
			ImageURLs:  imagesM,
			Note:       NoPhotoForM,
		}},
	},
	{
		Code:             "8809591514628",
		ApplicableModels: modelsTS,
		Variants: []Variant{
			{
				Label:      "버전 1",
				PartName:   "SVC_CARBON-COMPOSITE_FTASM_08_130,HAYCABB_CP-ALL_KR",
				PartNumber: "10420-0043A1",
			},
			{
				Label:      "버전 2",
				PartName:   "SVC_CARBON-COMPOSITE_FTASM_08_50,130,HAYCABB_CP-ALL_KR",
				PartNumber: "10420-0043C1",
			},
		},
		ImageURLs: imagesTS,
	},
}
